// Package notification renders event templates and delivers them in-app
// over websockets, with email as a secondary channel for sensitive events.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/mailer"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type Service struct {
	hub    *Hub
	mailer *mailer.Mailer
	users  UserRepository
	logger logger.Logger
}

// NewService wires the hub and an optional mailer; pass nil mailer to
// disable email delivery (tests, local development).
func NewService(hub *Hub, m *mailer.Mailer, users UserRepository, log logger.Logger) *Service {
	return &Service{
		hub:    hub,
		mailer: m,
		users:  users,
		logger: log,
	}
}

// Notify renders the event and pushes it to the user's open connections.
// OTP codes additionally go out by email when the user has one on file,
// since the in-app channel may not be open on the confirming device.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error {
	subject, body := render(eventType, data)

	event := &Event{
		Type:      eventType,
		Subject:   subject,
		Body:      body,
		Data:      data,
		CreatedAt: time.Now(),
	}
	s.hub.Push(userID, event)

	if eventType == "TRANSFER_OTP" && s.mailer != nil {
		user, err := s.users.FindByID(ctx, userID)
		if err == nil && user.Email != "" {
			if err := s.mailer.Send(user.Email, subject, body); err != nil {
				s.logger.Warn("Failed to email notification", map[string]interface{}{
					"user_id": userID,
					"type":    eventType,
					"error":   err.Error(),
				})
			}
		}
	}

	s.logger.Debug("Notification dispatched", map[string]interface{}{
		"user_id": userID,
		"type":    eventType,
	})
	return nil
}

func render(eventType string, data map[string]interface{}) (subject, body string) {
	switch eventType {
	case "TRANSFER_OTP":
		return "Your transfer code",
			fmt.Sprintf("Use code %v to confirm sending %v %v. The code expires at %v.",
				data["code"], data["amount"], data["currency"], data["expires_at"])
	case "TRANSFER_SENT":
		return "Transfer sent",
			fmt.Sprintf("You sent %v %v (fee %v).", data["amount"], data["currency"], data["fee"])
	case "TRANSFER_RECEIVED":
		return "Transfer received",
			fmt.Sprintf("You received %v %v.", data["amount"], data["currency"])
	case "DEPOSIT_RECEIVED":
		return "Deposit credited",
			fmt.Sprintf("%v %v was credited to your wallet (fee %v).", data["amount"], data["currency"], data["fee"])
	case "WITHDRAWAL_COMPLETED":
		return "Withdrawal completed",
			fmt.Sprintf("You withdrew %v %v in cash (fee %v).", data["amount"], data["currency"], data["fee"])
	case "QR_PAYMENT_RECEIVED":
		return "Payment received",
			fmt.Sprintf("A customer paid you %v %v.", data["amount"], data["currency"])
	case "SETTLEMENT_DECIDED":
		return "Settlement update",
			fmt.Sprintf("Settlement %v is now %v.", data["settlement_number"], data["status"])
	case "KYC_DECIDED":
		if reason, ok := data["reason"].(string); ok && reason != "" {
			return "Identity verification update",
				fmt.Sprintf("Your verification is %v: %v", data["status"], reason)
		}
		return "Identity verification update",
			fmt.Sprintf("Your verification is %v.", data["status"])
	default:
		return "Notification", fmt.Sprintf("Event: %s", eventType)
	}
}
