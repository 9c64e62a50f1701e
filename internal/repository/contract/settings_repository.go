package contract

import (
	"context"

	"leadscout-be/internal/entity"
)

// SettingsRepository stores the singleton settings object. Get returns
// (nil, nil) when nothing has been saved yet.
type SettingsRepository interface {
	Get(ctx context.Context) (*entity.Settings, error)
	Save(ctx context.Context, settings *entity.Settings) error
}
