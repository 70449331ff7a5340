package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	subjectWelcome         = "Welcome to CarMarket"
	subjectMessageReceived = "You have a new message about your listing"
)

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "layout_top"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a1a2e;">{{.Heading}}</h2>
{{end}}
{{define "layout_bottom"}}
  <p style="color: #888; font-size: 12px;">CarMarket</p>
</div>
{{end}}

{{define "welcome.html"}}
{{template "layout_top" .}}
  <p>Hi {{.Username}},</p>
  <p>Your account is ready. <a href="{{.BaseURL}}/cars">Browse listings</a>,
  save your favourites and message sellers directly.</p>
{{template "layout_bottom" .}}
{{end}}

{{define "message_received.html"}}
{{template "layout_top" .}}
  <p>{{.SenderName}} sent you a message about <strong>{{.CarTitle}}</strong>:</p>
  <blockquote style="border-left: 3px solid #ccc; padding-left: 12px; color: #555;">{{.Preview}}</blockquote>
  <p><a href="{{.BaseURL}}/messages">Sign in</a> to reply.</p>
{{template "layout_bottom" .}}
{{end}}
`))

type welcomeEmailData struct {
	Heading  string
	Username string
	BaseURL  string
}

type messageReceivedEmailData struct {
	Heading    string
	SenderName string
	CarTitle   string
	Preview    string
	BaseURL    string
}

func renderEmailTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
