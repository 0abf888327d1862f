package mailer

import "embed"

const (
	FromName            = "Advisoret"
	maxRetries          = 3
	UserWelcomeTemplate = "user_invitation.tmpl"
	LoginCodeTemplate   = "login_code.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
