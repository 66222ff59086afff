package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"
)

//go:embed templates/*.txt
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.txt"))

// ResetCodeSubject is the subject line of password reset mails.
const ResetCodeSubject = "Your password reset code"

// ResetCodeMessage renders the password reset mail for to.
func ResetCodeMessage(from, to, code string, validity time.Duration) (Message, error) {
	var body bytes.Buffer
	err := templates.ExecuteTemplate(&body, "reset_code.txt", struct {
		Code         string
		ValidMinutes int
	}{
		Code:         code,
		ValidMinutes: int(validity / time.Minute),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render reset mail: %w", err)
	}

	return Message{
		From:    from,
		To:      to,
		Subject: ResetCodeSubject,
		Body:    body.String(),
	}, nil
}
