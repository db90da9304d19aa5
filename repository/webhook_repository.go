package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Govind-619/PaySphere/models"
	"gorm.io/gorm"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Insert stores a newly received event; a redelivery returns ErrDuplicate
func (r *WebhookEventRepository) Insert(ctx context.Context, ev *models.WebhookEvent) error {
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: webhook event %s", ErrDuplicate, ev.EventID)
		}
		return fmt.Errorf("insert webhook event: %w", err)
	}
	return nil
}

func (r *WebhookEventRepository) Find(ctx context.Context, provider models.PaymentProvider, eventID string) (*models.WebhookEvent, error) {
	var ev models.WebhookEvent
	err := r.db.WithContext(ctx).Where("provider = ? AND event_id = ?", provider, eventID).First(&ev).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ev, nil
}

// Finish records the outcome of handling an event. A processed event is never
// overwritten, and only a processed outcome may replace an ignored one, so the
// delivery that applied the event wins over concurrent redeliveries. A row that
// is already settled returns ErrStaleState.
func (r *WebhookEventRepository) Finish(ctx context.Context, id uint, status models.WebhookEventStatus, processingErr error) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":           status,
		"processing_error": "",
		"processed_at":     &now,
	}
	if processingErr != nil {
		updates["processing_error"] = processingErr.Error()
		updates["processed_at"] = nil
	}
	from := []models.WebhookEventStatus{models.WebhookEventReceived, models.WebhookEventFailed}
	if status == models.WebhookEventProcessed {
		from = append(from, models.WebhookEventIgnored)
	}
	res := r.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("finish webhook event %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
