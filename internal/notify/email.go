package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// Email sends notifications through SendGrid.
type Email struct {
	key  string
	from *sgmail.Email
	to   *sgmail.Email
}

func NewEmail(apiKey, from, to string) *Email {
	return &Email{
		key:  apiKey,
		from: sgmail.NewEmail("attendwatch", from),
		to:   sgmail.NewEmail("", to),
	}
}

func (e *Email) prepare(n Notification) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = fmt.Sprintf("[attendwatch] %s (%s)", n.Title, n.Date)
	p.AddTos(e.to)

	m := sgmail.NewV3Mail()
	m.SetFrom(e.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", n.Body),
		sgmail.NewContent("text/html", "<p>"+html.EscapeString(n.Body)+"</p>"),
	)
	return m
}

func (e *Email) Notify(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req := sendgrid.GetRequest(e.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(e.prepare(n))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
