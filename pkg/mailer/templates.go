package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// Template names.
const (
	TemplateWelcome                = "welcome"
	TemplateEnrollmentConfirmation = "enrollment_confirmation"
	TemplatePaymentReceipt         = "payment_receipt"
	TemplatePaymentStatus          = "payment_status"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

var subjects = map[string]string{
	TemplateWelcome:                "Welcome to CUBIS Academy, {{.Name}}",
	TemplateEnrollmentConfirmation: "You are enrolled in {{.CourseTitle}}",
	TemplatePaymentReceipt:         "Payment received: {{.Reference}}",
	TemplatePaymentStatus:          "Payment {{.Reference}} is now {{.Status}}",
}

var funcs = map[string]interface{}{
	"money": func(amount float64) string { return fmt.Sprintf("Rp %.2f", amount) },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02 Jan 2006")
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// Templates holds the parsed subject, HTML and text variants of every email.
type Templates struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

// LoadTemplates parses the embedded email templates.
func LoadTemplates() (*Templates, error) {
	html, err := htmltemplate.New("html").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.New("text").Funcs(funcs).ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}

	subject := texttemplate.New("subject").Funcs(funcs)
	for name, body := range subjects {
		if _, err := subject.New(name).Parse(body); err != nil {
			return nil, fmt.Errorf("parse subject %s: %w", name, err)
		}
	}

	return &Templates{subject: subject, html: html, text: text}, nil
}

// Render executes the named template with data.
func (t *Templates) Render(name string, data interface{}) (Message, error) {
	if t.html.Lookup(name+".html") == nil {
		return Message{}, fmt.Errorf("unknown email template %q", name)
	}

	var subject, html, text bytes.Buffer
	if err := t.subject.ExecuteTemplate(&subject, name, data); err != nil {
		return Message{}, fmt.Errorf("render subject %s: %w", name, err)
	}
	if err := t.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return Message{}, fmt.Errorf("render html %s: %w", name, err)
	}
	if t.text.Lookup(name+".txt") != nil {
		if err := t.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
			return Message{}, fmt.Errorf("render text %s: %w", name, err)
		}
	}

	return Message{
		Subject: strings.TrimSpace(subject.String()),
		HTML:    html.String(),
		Text:    strings.TrimSpace(text.String()),
		Tags:    map[string]string{"template": name},
	}, nil
}

// WelcomeData feeds the welcome template.
type WelcomeData struct {
	Name          string
	Email         string
	StudentNumber string
}

// EnrollmentData feeds the enrollment confirmation template.
type EnrollmentData struct {
	Name        string
	CourseTitle string
	EnrolledAt  time.Time
	Amount      float64
	Reference   string
}

// PaymentData feeds the payment receipt and status templates.
type PaymentData struct {
	Name        string
	CourseTitle string
	Reference   string
	Amount      float64
	Status      string
	Method      string
	PaidAt      time.Time
	Notes       string
}
