package integration

import (
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/eliyaaki/auth-service/internal/handlers"
	"github.com/eliyaaki/auth-service/internal/logger"
	"github.com/eliyaaki/auth-service/internal/mailer"
	"github.com/eliyaaki/auth-service/internal/repository/postgres"
	"github.com/eliyaaki/auth-service/internal/service/auth"
	"github.com/eliyaaki/auth-service/internal/service/token"
	"github.com/eliyaaki/auth-service/internal/service/user"
	"github.com/eliyaaki/auth-service/internal/testutil"
)

// Mailbox records mail instead of delivering it, so tests can read
// verification and reset codes from the outbox
type Mailbox struct {
	mu   sync.Mutex
	mail []mailer.Message
}

func (m *Mailbox) Enqueue(msg mailer.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mail = append(m.mail, msg)
}

func (m *Mailbox) Messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.mail...)
}

type Services struct {
	AuthService *auth.AuthService
	UserService *user.UserService
	Mailbox     *Mailbox
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// Everything the test changes is rolled back when it stops
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, s Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		// Initialize repositories over the test transaction
		storage := postgres.NewStorage(tx)

		// Initialize services
		keys := testutil.GenerateKeyPair(t)
		refreshKeys := testutil.GenerateKeyPair(t)
		codec, err := token.New(token.Config{
			AccessPrivateKey:  keys.Private,
			AccessPublicKey:   keys.Public,
			RefreshPrivateKey: refreshKeys.Private,
			RefreshPublicKey:  refreshKeys.Public,
		})
		require.NoError(t, err, "token codec should be created without errors")

		as, err := auth.NewService(auth.Config{}, codec, storage.User(), storage.Session())
		require.NoError(t, err, "auth service should be created without errors")

		mailbox := &Mailbox{}
		us, err := user.NewService(user.Config{BaseURL: "http://localhost:8000"}, storage, mailbox)
		require.NoError(t, err, "user service should be created without errors")

		// Complete all together as router
		router := handlers.NewRouter(as, us, logger.NewNoOp())

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, Services{
			AuthService: as,
			UserService: us,
			Mailbox:     mailbox,
		})
	})
}
