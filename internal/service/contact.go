package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/Skotchmaster/feed_shop/internal/events"
	"github.com/Skotchmaster/feed_shop/internal/models"
	"github.com/Skotchmaster/feed_shop/internal/repo"
	"github.com/Skotchmaster/feed_shop/internal/transport"
)

type ContactService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *ContactService) Submit(ctx context.Context, req transport.ContactRequest) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   req.Phone,
		Message: req.Message,
	}
	if msg.Name == "" {
		return nil, invalid("name", "Name is required")
	}
	if msg.Email == "" {
		return nil, invalid("email", "Email is required")
	}
	if strings.TrimSpace(msg.Message) == "" {
		return nil, invalid("message", "Message is required")
	}

	if err := s.Repo.CreateContactMessage(ctx, msg); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicContact, strconv.FormatUint(uint64(msg.ID), 10), "contact_received", map[string]any{
		"messageID": msg.ID,
		"email":     msg.Email,
	})
	return msg, nil
}

func (s *ContactService) List(ctx context.Context) ([]models.ContactMessage, error) {
	return s.Repo.ListContactMessages(ctx)
}
