package storage

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BatchRecord describes the most recent seal or unseal of the directory.
type BatchRecord struct {
	Direction string    `json:"direction"`
	At        time.Time `json:"at"`
	Files     int       `json:"files"`
}

// RecordBatch stores rec as the last batch.
func (s *Storage) RecordBatch(rec BatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		state := tx.Bucket(StateBucket)
		if state == nil {
			return fmt.Errorf("state bucket not found")
		}
		return state.Put(KeyLastBatch, data)
	})
}

// LastBatch returns the last recorded batch, or nil if none was stored.
func (s *Storage) LastBatch() (*BatchRecord, error) {
	data, err := s.get(KeyLastBatch)
	if err != nil || data == nil {
		return nil, err
	}
	rec := &BatchRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to decode last batch: %w", err)
	}
	return rec, nil
}
