package repository

import (
	"checkout/api/internal/domain"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventsRepo struct {
}

func InitEventsRepo() *EventsRepo {
	return &EventsRepo{}
}

func (r *EventsRepo) Create(tx *gorm.DB, eventType string, relationID string, payload string) error {
	if !json.Valid([]byte(payload)) {
		return fmt.Errorf("invalid payload: %s", payload)
	}

	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Events{Type: eventType, RelationID: relationID, Payload: payload, Status: domain.EVENT_STATUS_NEW}).Error
}

// FindNew returns undelivered events, least retried first
func (r *EventsRepo) FindNew(tx *gorm.DB, limit int) ([]domain.Events, error) {
	var events []domain.Events
	return events, tx.Where("status = ?", domain.EVENT_STATUS_NEW).Order("attempts, id").Limit(limit).Find(&events).Error
}

func (r *EventsRepo) Done(tx *gorm.DB, id uint) error {
	return tx.Model(&domain.Events{}).Where("id = ?", id).Update("status", domain.EVENT_STATUS_DONE).Error
}

// Failed counts a delivery attempt and parks the event once maxAttempts is reached
func (r *EventsRepo) Failed(tx *gorm.DB, id uint, maxAttempts int) error {
	return tx.Model(&domain.Events{}).Where("id = ?", id).Updates(map[string]any{
		"attempts": gorm.Expr("attempts + 1"),
		"status":   gorm.Expr("CASE WHEN attempts + 1 >= ? THEN ? ELSE status END", maxAttempts, domain.EVENT_STATUS_FAILED),
	}).Error
}
