package models

import (
	"time"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued on successful authentication
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
