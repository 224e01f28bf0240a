package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) SendReturnReminder(ctx context.Context, email, name string, orderID int64, plannedEnd string) error {
	subject := "Your EV rental return is due"
	body := fmt.Sprintf("Hello %s,\n\nThis is a reminder that your rental (order #%d) is due back on %s.\n\nPlease return the vehicle to the pickup station on time to avoid late fees.\n\nBest regards,\nEVFleet Operations", name, orderID, plannedEnd)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendOverdueNotice(ctx context.Context, email, name string, orderID int64, daysLate int32) error {
	subject := "Your EV rental return is overdue"
	body := fmt.Sprintf("Hello %s,\n\nYour rental (order #%d) is now %d day(s) past its agreed return date. Late fees accrue per day until the vehicle is returned.\n\nBest regards,\nEVFleet Operations", name, orderID, daysLate)
	return s.send(email, name, subject, body)
}

func (s *emailService) send(to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
