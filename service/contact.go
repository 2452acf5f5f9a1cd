package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-bot/internal/logger"
	"portfolio-bot/internal/mailclient"
	"portfolio-bot/model"
)

var (
	ErrNotifierNotConfigured = errors.New("contact notifier not configured")
	ErrDeliveryFailed        = errors.New("contact delivery failed")
	ErrInvalidContact        = errors.New("invalid contact message")
)

// Notifier forwards a contact message to the site owner.
type Notifier interface {
	Configured() bool
	Send(ctx context.Context, msg *model.ContactMessage) (string, error)
}

// ContactInbox persists contact messages.
type ContactInbox interface {
	Save(ctx context.Context, msg *model.ContactMessage) error
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
	List(ctx context.Context, limit int) ([]*model.ContactMessage, error)
}

type ContactService struct {
	inbox    ContactInbox
	notifier Notifier
	now      func() time.Time
}

func NewContactService(inbox ContactInbox, notifier Notifier) *ContactService {
	return &ContactService{inbox: inbox, notifier: notifier, now: time.Now}
}

// Submit stores the message first so nothing is lost, then notifies. The
// returned message carries its id even when notification fails.
func (s *ContactService) Submit(ctx context.Context, req model.ContactRequest) (*model.ContactMessage, error) {
	msg := &model.ContactMessage{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: s.now(),
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return nil, fmt.Errorf("%w: name, email and message are required", ErrInvalidContact)
	}

	log := logger.Component("contact")
	if err := s.inbox.Save(ctx, msg); err != nil {
		return nil, err
	}

	if s.notifier == nil || !s.notifier.Configured() {
		log.Warn().Str("id", msg.ID).Msg("notifier not configured, message kept in inbox only")
		_ = s.inbox.MarkFailed(ctx, msg.ID, ErrNotifierNotConfigured.Error())
		return msg, ErrNotifierNotConfigured
	}

	providerID, err := s.notifier.Send(ctx, msg)
	if err != nil {
		log.Error().Err(err).Str("id", msg.ID).Msg("contact delivery failed")
		if markErr := s.inbox.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
			log.Warn().Err(markErr).Str("id", msg.ID).Msg("failed to record delivery error")
		}
		if errors.Is(err, mailclient.ErrNotConfigured) {
			return msg, ErrNotifierNotConfigured
		}
		return msg, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	delivered := s.now()
	msg.DeliveredAt = &delivered
	if err := s.inbox.MarkDelivered(ctx, msg.ID, delivered); err != nil {
		log.Warn().Err(err).Str("id", msg.ID).Msg("failed to record delivery")
	}
	log.Info().Str("id", msg.ID).Str("provider_id", providerID).Msg("contact message delivered")
	return msg, nil
}

func (s *ContactService) Recent(ctx context.Context, limit int) ([]*model.ContactMessage, error) {
	return s.inbox.List(ctx, limit)
}
