package mailer

import (
	"bytes"
	"fmt"
	"text/template"

	"golang.org/x/net/html"
)

// Submitted fields are stored HTML-escaped, so the HTML body uses them as-is
// and the text body unescapes them.
var (
	htmlBody = template.Must(template.New("html").Parse(`<h2>New contact message</h2>
<p><strong>From:</strong> {{.FromName}} &lt;{{.FromEmail}}&gt;</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Received:</strong> {{.Timestamp}} ({{.ClientIP}})</p>
<hr>
<p style="white-space: pre-wrap">{{.Body}}</p>
<p style="color:#888;font-size:12px">Request {{.RequestID}}</p>
`))

	textBody = template.Must(template.New("text").Parse(`New contact message

From: {{.FromName}} <{{.FromEmail}}>
Subject: {{.Subject}}
Received: {{.Timestamp}} ({{.ClientIP}})

{{.Body}}

Request {{.RequestID}}
`))
)

type renderData struct {
	FromName  string
	FromEmail string
	Subject   string
	Body      string
	Timestamp string
	ClientIP  string
	RequestID string
}

// SubjectLine is the subject of the notification email
func (m *Message) SubjectLine() string {
	return "[itmade.fr] " + html.UnescapeString(m.Subject)
}

// RenderHTML renders the HTML notification body
func (m *Message) RenderHTML() (string, error) {
	return render(htmlBody, renderData{
		FromName:  m.FromName,
		FromEmail: html.EscapeString(m.FromEmail),
		Subject:   m.Subject,
		Body:      m.Body,
		Timestamp: m.Timestamp(),
		ClientIP:  html.EscapeString(m.ClientIP),
		RequestID: html.EscapeString(m.RequestID),
	})
}

// RenderText renders the plain-text notification body
func (m *Message) RenderText() (string, error) {
	return render(textBody, renderData{
		FromName:  html.UnescapeString(m.FromName),
		FromEmail: m.FromEmail,
		Subject:   html.UnescapeString(m.Subject),
		Body:      html.UnescapeString(m.Body),
		Timestamp: m.Timestamp(),
		ClientIP:  m.ClientIP,
		RequestID: m.RequestID,
	})
}

func render(tmpl *template.Template, data renderData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s body: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
