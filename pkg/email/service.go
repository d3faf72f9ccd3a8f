// pkg/email/service.go
package email

// GlobalEmailService stays nil when SMTP is not configured.
var GlobalEmailService *EmailService

func InitEmailService(cfg SMTPConfig) error {
	service, err := NewEmailService(cfg)
	if err != nil {
		return err
	}
	GlobalEmailService = service
	return nil
}
