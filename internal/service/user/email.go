package user

import (
	"fmt"

	"github.com/eliyaaki/auth-service/internal/mailer"
	"github.com/eliyaaki/auth-service/internal/models"
)

func verificationEmail(user models.User, url string) mailer.Message {
	return mailer.Message{
		To:      user.Email,
		Subject: "Verification Email",
		Text:    fmt.Sprintf("Hi %s, follow the link to verify your email: %s", user.Name, url),
		HTML: fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Follow the link to verify your email address:</p>
<p><a href=%q>Verify email</a></p>
<p>If you did not register, ignore this message.</p>
</body></html>`, user.Name, url),
	}
}

func resetEmail(user models.User, url string) mailer.Message {
	return mailer.Message{
		To:      user.Email,
		Subject: "Reset password",
		Text:    fmt.Sprintf("Hi %s, follow the link to reset your password: %s", user.Name, url),
		HTML: fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Follow the link to set a new password:</p>
<p><a href=%q>Reset password</a></p>
<p>The link works once. If you did not request a reset, ignore this message.</p>
</body></html>`, user.Name, url),
	}
}
