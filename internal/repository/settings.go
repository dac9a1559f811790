package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/fittrack/internal/models"
)

// GetSetting decodes the value stored under key into dst. When the key is
// absent dst keeps whatever default the caller put there and found is false.
func (r *Repository) GetSetting(ctx context.Context, key string, dst any) (found bool, err error) {
	s, err := getOne[models.AppSetting](ctx, r.db, models.CollAppSettings, key)
	if err != nil {
		return false, fmt.Errorf("getting setting %q: %w", key, err)
	}
	if s == nil || len(s.Value) == 0 || string(s.Value) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(s.Value, dst); err != nil {
		return false, fmt.Errorf("decoding setting %q: %w", key, err)
	}
	return true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (r *Repository) SetSetting(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding setting %q: %w", key, err)
	}
	if _, err := r.db.Put(ctx, models.CollAppSettings, models.AppSetting{Key: key, Value: raw}); err != nil {
		return fmt.Errorf("saving setting %q: %w", key, err)
	}
	return nil
}

// GetAllSettings returns every stored setting in key order.
func (r *Repository) GetAllSettings(ctx context.Context) ([]models.AppSetting, error) {
	ss, err := getAll[models.AppSetting](ctx, r.db, models.CollAppSettings)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	return ss, nil
}
