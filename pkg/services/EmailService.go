package services

import (
	"html/template"
	"strings"

	"github.com/adampresley/adamgokit/email"
	"github.com/adampresley/weddinggallery/pkg/models"
)

type UploadNotifier interface {
	NotifyUploadFinished(job models.UploadJob) error
}

type EmailServiceConfig struct {
	ApiKey    string
	FromEmail string
	FromName  string
	ToEmail   string
}

type EmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	toEmail   string
}

func NewEmailService(config EmailServiceConfig) EmailService {
	return EmailService{
		apiKey:    config.ApiKey,
		fromEmail: config.FromEmail,
		fromName:  config.FromName,
		toEmail:   config.ToEmail,
	}
}

func (s EmailService) Enabled() bool {
	return s.apiKey != "" && s.toEmail != ""
}

func (s EmailService) NotifyUploadFinished(job models.UploadJob) error {
	if !s.Enabled() {
		return nil
	}

	return SendEmail(s.apiKey, "", s.toEmail, s.fromName, s.fromEmail, map[string]any{
		"clientSlug": job.ClientSlug,
		"status":     string(job.Status),
		"total":      job.Progress.Total,
		"completed":  job.Progress.Completed,
		"failed":     job.Progress.Failed,
		"message":    job.Message,
	})
}

func SendEmail(apiKey, toName, toEmail, fromName, fromEmail string, data map[string]any) error {
	parsedTemplate := strings.Builder{}

	service := email.NewResendService(&email.Config{
		ApiKey: apiKey,
	})

	tmpl := `
<h1>Upload finished for '{{.clientSlug}}'</h1>
<p>{{.completed}} of {{.total}} photos were uploaded. {{.failed}} failed.</p>
<p>Status: {{.status}}. {{.message}}</p>
<p>Gallery link: <code>?client={{.clientSlug}}</code></p>
	`

	data["toName"] = toName

	t := template.Must(template.New("email").Parse(tmpl))
	_ = t.Execute(&parsedTemplate, data)

	return service.Send(email.Mail{
		Body:       parsedTemplate.String(),
		BodyIsHtml: true,
		From: email.EmailAddress{
			Email: fromEmail,
			Name:  fromName,
		},
		Subject: "Photo upload finished",
		To: []email.EmailAddress{
			{Name: toName, Email: toEmail},
		},
	})
}
