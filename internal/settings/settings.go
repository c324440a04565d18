// Package settings exposes runtime-tunable pipeline knobs (thresholds,
// deny-list terms, rate-limit windows). Values are seeded from env config,
// optionally overridden by admin-managed rows in pipeline_settings, and
// served from an in-memory snapshot so hot paths never touch the table.
package settings

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/safeloop/moderation-backend/internal/config"
	"github.com/safeloop/moderation-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Well-known keys.
const (
	KeyFlagThreshold  = "flag_threshold"
	KeyBlockThreshold = "block_threshold"
	KeyDenyList       = "deny_list"
	KeyPostWindow     = "post_window"
	KeyReplyWindow    = "reply_window"
	KeyReportWindow   = "report_window"
)

// DefaultDenyList is the local backstop term set. Matching is
// case-insensitive substring, so it also catches embedded terms.
var DefaultDenyList = []string{"hate", "kill", "suicide", "terror", "racist", "sexist"}

type Service struct {
	db *gorm.DB

	mu       sync.RWMutex
	values   map[string]string
	defaults *config.Config
}

func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:       db,
		values:   make(map[string]string),
		defaults: cfg,
	}
}

// Reload replaces the snapshot with the current table contents.
func (s *Service) Reload(ctx context.Context) error {
	var rows []models.PipelineSetting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return err
	}
	fresh := make(map[string]string, len(rows))
	for _, row := range rows {
		fresh[row.Key] = row.Value
	}
	s.mu.Lock()
	s.values = fresh
	s.mu.Unlock()
	return nil
}

// Set upserts one setting and updates the snapshot.
func (s *Service) Set(ctx context.Context, key, value, valueType string) error {
	row := models.PipelineSetting{Key: key, Value: value, Type: valueType}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Delete removes an override, falling back to the env default.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&models.PipelineSetting{}, "key = ?", key).Error; err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// All returns a copy of the current overrides.
func (s *Service) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Service) lookup(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Service) FlagThreshold() float64 {
	if v, ok := s.lookup(KeyFlagThreshold); ok {
		if f, err := parseFloat(v); err == nil {
			return f
		}
	}
	return s.defaults.FlagThreshold
}

func (s *Service) BlockThreshold() float64 {
	if v, ok := s.lookup(KeyBlockThreshold); ok {
		if f, err := parseFloat(v); err == nil {
			return f
		}
	}
	return s.defaults.BlockThreshold
}

func (s *Service) DenyList() []string {
	if v, ok := s.lookup(KeyDenyList); ok {
		parts := strings.Split(v, ",")
		terms := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				terms = append(terms, t)
			}
		}
		if len(terms) > 0 {
			return terms
		}
	}
	return DefaultDenyList
}

// Window returns the rate-limit window for an action class.
func (s *Service) Window(actionClass string) time.Duration {
	key := KeyPostWindow
	switch actionClass {
	case models.ActionReply:
		key = KeyReplyWindow
	case models.ActionReport:
		key = KeyReportWindow
	}
	if v, ok := s.lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return s.defaults.Window(actionClass)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
