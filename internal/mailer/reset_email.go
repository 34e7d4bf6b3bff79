package mailer

import "fmt"

// NewPasswordResetMessage builds the password-reset email for the given
// recipient. link is the full frontend URL carrying the reset token.
func NewPasswordResetMessage(to, firstName, link string) Message {
	html := fmt.Sprintf(
		`<p>Hi %s, you requested a password reset for your TaskFlow account.</p>
<p>Click the following link to choose a new one:
<a href="%s">Reset password</a></p>
<p>If you did not request this change, you can ignore this message.</p>`,
		firstName, link)

	return Message{
		To:      to,
		Subject: "Reset your TaskFlow password",
		HTML:    html,
	}
}
