package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"

	"portfolio-backend/internal/config"
)

type Service interface {
	SendWelcomeEmail(ctx context.Context, toEmail, fullName string) error
	SendNewReviewEmail(ctx context.Context, authorName string, rating int, text string) error
	SendReplyEmail(ctx context.Context, toEmail, recipientName, authorName, text string) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

func NewService(cfg *config.Config) Service {
	return &service{
		client: resend.NewClient(cfg.ResendAPIKey),
		config: cfg,
	}
}

var bodyTemplate = template.Must(template.New("body").Parse(`
<div style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>{{.Title}}</h2>
  <p>Hi {{.Name}},</p>
  <p>{{.Message}}</p>
  {{if .Quote}}<blockquote style="color: #555; border-left: 3px solid #ddd; padding-left: 12px;">{{.Quote}}</blockquote>{{end}}
  {{if .Link}}<p><a href="{{.Link}}">{{.LinkLabel}}</a></p>{{end}}
</div>`))

type bodyData struct {
	Title     string
	Name      string
	Message   string
	Quote     string
	Link      string
	LinkLabel string
}

func (s *service) sendEmail(toEmail, subject string, data bodyData) error {
	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.SiteName, s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	_, err := s.client.Emails.Send(params)
	return err
}

func (s *service) SendWelcomeEmail(ctx context.Context, toEmail, fullName string) error {
	return s.sendEmail(toEmail, fmt.Sprintf("Welcome to %s!", s.config.SiteName), bodyData{
		Title:     "Welcome!",
		Name:      fullName,
		Message:   "Thanks for signing up. You can now leave reviews and order services.",
		Link:      fmt.Sprintf("https://%s/services", s.config.Domain),
		LinkLabel: "Browse services",
	})
}

// SendNewReviewEmail notifies the site owner that a review was posted.
func (s *service) SendNewReviewEmail(ctx context.Context, authorName string, rating int, text string) error {
	return s.sendEmail(s.config.OwnerEmail, fmt.Sprintf("New %d-star review from %s", rating, authorName), bodyData{
		Title:     "New Review",
		Name:      "there",
		Message:   fmt.Sprintf("%s left a %d-star review:", authorName, rating),
		Quote:     text,
		Link:      fmt.Sprintf("https://%s/services#rating-and-comment-section", s.config.Domain),
		LinkLabel: "View reviews",
	})
}

// SendReplyEmail notifies a comment author that someone replied to them.
func (s *service) SendReplyEmail(ctx context.Context, toEmail, recipientName, authorName, text string) error {
	return s.sendEmail(toEmail, fmt.Sprintf("%s replied to your comment", authorName), bodyData{
		Title:     "New Reply",
		Name:      recipientName,
		Message:   fmt.Sprintf("%s replied:", authorName),
		Quote:     text,
		Link:      fmt.Sprintf("https://%s/services#rating-and-comment-section", s.config.Domain),
		LinkLabel: "View the conversation",
	})
}
