package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/storage"
)

const (
	keyPrefix     = "snapshot/student/"
	recordVersion = 1
)

// record is the stored form of a snapshot.
type record struct {
	Version int                    `json:"version"`
	SavedAt int64                  `json:"saved_at"`
	Student domain.StudentSnapshot `json:"student"`
}

// Manager stores one student snapshot per profile in a KV engine.
//
// A snapshot is display data only. It is never consulted to decide whether
// a session exists.
type Manager struct {
	kv      storage.KV
	profile string
	now     func() time.Time
}

// NewManager creates a snapshot manager for profile.
func NewManager(kv storage.KV, profile string) *Manager {
	return &Manager{
		kv:      kv,
		profile: profile,
		now:     time.Now,
	}
}

func (m *Manager) key() []byte {
	return []byte(keyPrefix + m.profile)
}

// Save replaces the stored snapshot.
func (m *Manager) Save(ctx context.Context, snap domain.StudentSnapshot) error {
	data, err := json.Marshal(record{
		Version: recordVersion,
		SavedAt: m.now().UnixMilli(),
		Student: snap,
	})
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := m.kv.Set(ctx, m.key(), data); err != nil {
		return fmt.Errorf("snapshot: save: %w", err)
	}
	return nil
}

// Load returns the stored snapshot. ok is false when none exists or the
// stored record cannot be decoded.
func (m *Manager) Load(ctx context.Context) (snap domain.StudentSnapshot, ok bool, err error) {
	data, err := m.kv.Get(ctx, m.key())
	if errors.Is(err, storage.ErrKeyNotFound) {
		return domain.StudentSnapshot{}, false, nil
	}
	if err != nil {
		return domain.StudentSnapshot{}, false, fmt.Errorf("snapshot: load: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil || rec.Version != recordVersion {
		return domain.StudentSnapshot{}, false, nil
	}
	return rec.Student, true, nil
}

// Clear removes the stored snapshot. Clearing twice is a no-op.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.kv.Delete(ctx, m.key()); err != nil {
		return fmt.Errorf("snapshot: clear: %w", err)
	}
	return nil
}

// Profiles lists the profiles that currently hold a snapshot.
func Profiles(ctx context.Context, kv storage.KV) ([]string, error) {
	var names []string
	err := kv.Scan(ctx, []byte(keyPrefix), func(key, _ []byte) bool {
		names = append(names, string(key[len(keyPrefix):]))
		return true
	})
	return names, err
}
