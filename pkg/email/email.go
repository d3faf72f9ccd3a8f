// pkg/email/email.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

const maxSendAttempts = 3

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type EmailService struct {
	dialer    *gomail.Dialer
	from      string
	templates *template.Template
}

// Template data structures
type WelcomeEmailData struct {
	Name string
}

type PropertyMatchData struct {
	Name          string
	RequestTitle  string
	PropertyTitle string
	City          string
}

type ListingStatsData struct {
	Name           string
	Period         string
	ActiveListings int64
	TotalViews     int64
	NewLikes       int64
	NewComments    int64
	NewInquiries   int64
	TopProperty    string
	TopViews       int64
	StartDate      time.Time
}

type PromotionReceiptData struct {
	Name          string
	PropertyTitle string
	PlanName      string
	Days          int
	FeaturedUntil time.Time
}

func NewEmailService(cfg SMTPConfig) (*EmailService, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %w", err)
	}

	return &EmailService{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:      fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From),
		templates: templates,
	}, nil
}

func (s *EmailService) render(templateName string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

func (s *EmailService) sendTemplateEmail(ctx context.Context, to, subject, templateName string, data interface{}) error {
	body, err := s.render(templateName, data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	// backoff 1s, 2s between attempts
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		err = s.dialer.DialAndSend(m)
		if err == nil {
			return nil
		}
		if attempt == maxSendAttempts-1 {
			break
		}
		delay := time.Duration(1<<attempt) * time.Second
		log.Printf("Email to %s failed (attempt %d): %v, retrying in %v", to, attempt+1, err, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("email send cancelled: %w", ctx.Err())
		}
	}

	return fmt.Errorf("failed to send email to %s after %d attempts: %w", to, maxSendAttempts, err)
}

// Email sending methods
func (s *EmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	return s.sendTemplateEmail(ctx, to, "مرحباً بك في دياري", "welcome.html", WelcomeEmailData{Name: name})
}

func (s *EmailService) SendPropertyMatchEmail(ctx context.Context, to string, data PropertyMatchData) error {
	return s.sendTemplateEmail(ctx, to, "طلب عقار مطابق لعقارك", "property_match.html", data)
}

func (s *EmailService) SendListingStats(ctx context.Context, to string, data ListingStatsData) error {
	return s.sendTemplateEmail(ctx, to, "إحصائيات إعلاناتك الأسبوعية", "listing_stats.html", data)
}

func (s *EmailService) SendPromotionReceipt(ctx context.Context, to string, data PromotionReceiptData) error {
	return s.sendTemplateEmail(ctx, to, "تم تمييز إعلانك", "promotion_receipt.html", data)
}
