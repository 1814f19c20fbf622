package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"sort"
	"strings"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/logger"
)

type EmailService interface {
	SendWelcome(to, name string, role domain.Role) error
	SendOrderConfirmation(to, name string, order *domain.Order) error
	SendTicket(to, name string, order *domain.Order, events map[string]string) error
	SendSubscriptionConfirmation(to, name, artistName string, sub *domain.Subscription) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailService struct {
	smtpHost string
	smtpPort string
	username string
	password string
	from     string
	appURL   string
	send     sendFunc
}

func NewEmailService(smtpHost, smtpPort, username, password, from, appURL string) EmailService {
	return &emailService{
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		username: username,
		password: password,
		from:     from,
		appURL:   strings.TrimRight(appURL, "/"),
		send:     smtp.SendMail,
	}
}

const layout = `<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #7c3aed; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f4f4f4; }
        .button { display: inline-block; padding: 12px 30px; background-color: #7c3aed; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
        table { width: 100%; border-collapse: collapse; }
        td, th { padding: 6px; border-bottom: 1px solid #ddd; text-align: left; }
        .footer { text-align: center; padding: 20px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>{{.Heading}}</h1></div>
        <div class="content">
            <h2>Hi {{.Name}},</h2>
            {{template "body" .}}
        </div>
        <div class="footer"><p>© Rise Up Creators. All rights reserved.</p></div>
    </div>
</body>
</html>`

var templates = map[string]string{
	"welcome": `{{define "body"}}
<p>Welcome to Rise Up Creators!{{if .Artist}} Your artist profile is ready: upload your first track and start building your fanbase.{{else}} Discover independent artists, follow your favourites and never miss a show.{{end}}</p>
<a href="{{.AppURL}}" class="button">Open Rise Up</a>
{{end}}`,

	"order": `{{define "body"}}
<p>Thanks for your purchase. Order <strong>{{.Order.ID}}</strong> is confirmed.</p>
<table>
<tr><th>Item</th><th>Qty</th><th>Price</th></tr>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{money .Price}}</td></tr>
{{end}}</table>
<p>Subtotal: {{money .Order.Summary.Subtotal}}<br>
{{if .Order.Summary.Discount}}Discount: -{{money .Order.Summary.Discount}}<br>{{end}}
Tax: {{money .Order.Summary.Tax}}<br>
<strong>Total: {{money .Order.Summary.Total}}</strong></p>
<a href="{{.AppURL}}/orders/{{.Order.ID}}" class="button">View order</a>
{{end}}`,

	"ticket": `{{define "body"}}
<p>Your tickets for order <strong>{{.Order.ID}}</strong> are ready. Show the QR code at the venue.</p>
{{range .Tickets}}<p><strong>{{.Event}}</strong><br>Code: {{.Code}}{{if .QRURL}}<br><a href="{{.QRURL}}">QR code</a>{{end}}</p>
{{end}}
{{end}}`,

	"subscription": `{{define "body"}}
<p>You are now subscribed to <strong>{{.Artist}}</strong> on the {{.Sub.Tier}} tier ({{money .Sub.Amount}}/month).</p>
<p>Your subscription runs until {{.Sub.EndDate.Format "02 Jan 2006"}}.</p>
{{end}}`,
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
}

var compiled = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templates))
	for name, body := range templates {
		t := template.Must(template.New("layout").Funcs(funcs).Parse(layout))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}()

func render(name string, data map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	if err := compiled[name].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (e *emailService) SendWelcome(to, name string, role domain.Role) error {
	body, err := render("welcome", map[string]interface{}{
		"Heading": "Welcome to Rise Up Creators",
		"Name":    name,
		"Artist":  role == domain.RoleArtist,
		"AppURL":  e.appURL,
	})
	if err != nil {
		return err
	}
	return e.sendEmail(to, "Welcome to Rise Up Creators", body)
}

func (e *emailService) SendOrderConfirmation(to, name string, order *domain.Order) error {
	body, err := render("order", map[string]interface{}{
		"Heading": "Order confirmed",
		"Name":    name,
		"Order":   order,
		"AppURL":  e.appURL,
	})
	if err != nil {
		return err
	}
	return e.sendEmail(to, fmt.Sprintf("Order %s confirmed - Rise Up Creators", order.ID), body)
}

type ticketLine struct {
	Event string
	Code  string
	QRURL string
}

// SendTicket lists every ticket on the order. events maps event id to its
// title.
func (e *emailService) SendTicket(to, name string, order *domain.Order, events map[string]string) error {
	lines := make([]ticketLine, 0, len(order.Tickets))
	for _, t := range order.Tickets {
		title := events[t.EventID]
		if title == "" {
			title = t.EventID
		}
		lines = append(lines, ticketLine{Event: title, Code: t.Code, QRURL: t.QRURL})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Event < lines[j].Event })

	body, err := render("ticket", map[string]interface{}{
		"Heading": "Your tickets",
		"Name":    name,
		"Order":   order,
		"Tickets": lines,
	})
	if err != nil {
		return err
	}
	return e.sendEmail(to, "Your event tickets - Rise Up Creators", body)
}

func (e *emailService) SendSubscriptionConfirmation(to, name, artistName string, sub *domain.Subscription) error {
	body, err := render("subscription", map[string]interface{}{
		"Heading": "Subscription confirmed",
		"Name":    name,
		"Artist":  artistName,
		"Sub":     sub,
	})
	if err != nil {
		return err
	}
	return e.sendEmail(to, fmt.Sprintf("You're subscribed to %s", artistName), body)
}

func (e *emailService) sendEmail(to, subject, body string) error {
	if e.username == "" || e.password == "" {
		logger.Info(logger.EventGeneral, "Email would be sent", logger.Fields(
			"email", to,
			"subject", subject,
		))
		return nil
	}

	auth := smtp.PlainAuth("", e.username, e.password, e.smtpHost)

	headers := [][2]string{
		{"From", e.from},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var message strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&message, "%s: %s\r\n", h[0], h[1])
	}
	message.WriteString("\r\n" + body)

	addr := fmt.Sprintf("%s:%s", e.smtpHost, e.smtpPort)
	if err := e.send(addr, auth, envelopeAddress(e.from), []string{to}, []byte(message.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// envelopeAddress pulls the bare address out of "Name <addr>".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}
