package repo

import (
	"context"

	"github.com/Skotchmaster/feed_shop/internal/models"
)

func (r *GormRepo) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	return r.DB.WithContext(ctx).Create(msg).Error
}

func (r *GormRepo) ListContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	msgs := make([]models.ContactMessage, 0)
	if err := r.DB.WithContext(ctx).Order("created_at DESC, id DESC").Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
