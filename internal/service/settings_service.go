package service

import (
	"context"
	"fmt"

	"leadscout-be/internal/dto"
	"leadscout-be/internal/entity"
	"leadscout-be/internal/repository/contract"
)

type ISettingsService interface {
	Get(ctx context.Context) (*entity.Settings, error)
	Update(ctx context.Context, req dto.UpdateSettingsRequest) (*entity.Settings, error)
}

type settingsService struct {
	repo contract.SettingsRepository
}

func NewSettingsService(repo contract.SettingsRepository) ISettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Get(ctx context.Context) (*entity.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil {
		settings = entity.DefaultSettings()
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*entity.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.SpaceKey = req.SpaceKey
	settings.JiraProjectKey = req.JiraProjectKey
	if req.DefaultResultCount > 0 {
		settings.DefaultResultCount = req.DefaultResultCount
	}
	settings.AutoSaveLeads = req.AutoSaveLeads

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}
