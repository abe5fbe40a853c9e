package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const stateOpTimeout = 2 * time.Second

// StateStore adapts the client to the trackers' key/value persistence
// surface. Each call gets its own short-lived context; trackers call this
// once per poll and must not block the schedule on a slow database.
type StateStore struct {
	client *PostgresClient
}

func (p *PostgresClient) StateStore() *StateStore {
	return &StateStore{client: p}
}

// Get loads the status map stored under key; a key never written yields an
// empty map.
func (s *StateStore) Get(key string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), stateOpTimeout)
	defer cancel()

	var rec StateRecord
	err := s.client.DB.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state %q: %w", key, err)
	}

	value := make(map[string]string)
	if err := json.Unmarshal([]byte(rec.Value), &value); err != nil {
		return nil, fmt.Errorf("decode state %q: %w", key, err)
	}
	return value, nil
}

// Set replaces the status map stored under key.
func (s *StateStore) Set(key string, value map[string]string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode state %q: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), stateOpTimeout)
	defer cancel()

	return s.client.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&StateRecord{Key: key, Value: string(data)}).Error
}
