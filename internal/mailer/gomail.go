package mailer

import (
	"bytes"
	"errors"
	"html/template"
	"time"

	gomail "gopkg.in/mail.v2"
)

type gomailClient struct {
	fromEmail string
	dialer    *gomail.Dialer
}

func NewGomailClient(host string, port int, username, password, fromEmail string) (Client, error) {
	if host == "" {
		return nil, errors.New("smtp host is required")
	}

	dialer := gomail.NewDialer(host, port, username, password)
	return &gomailClient{
		fromEmail: fromEmail,
		dialer:    dialer,
	}, nil
}

// Send renders the named embedded template and delivers it, retrying a
// few times before giving up.
func (c *gomailClient) Send(templateFile, username, email string, data any) (int, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return -1, err
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return -1, err
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return -1, err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", c.fromEmail)
	message.SetHeader("To", email)
	message.SetHeader("Subject", subject.String())
	message.SetBody("text/html", body.String())

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if lastErr = c.dialer.DialAndSend(message); lastErr == nil {
			return 200, nil
		}
		time.Sleep(time.Second * time.Duration(i+1))
	}

	return -1, lastErr
}
