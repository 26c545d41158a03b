package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/settings"
	"go.uber.org/zap"
)

// UpdateSettingsRequest is the admin payload for saving settings. Omitted
// fields keep their current value.
type UpdateSettingsRequest struct {
	BusinessName        *string `json:"business_name"`
	EmailTemplate       *string `json:"email_template"`
	SlotDurationMinutes *int    `json:"slot_duration_minutes"`
	BusinessHoursStart  *string `json:"business_hours_start"`
	BusinessHoursEnd    *string `json:"business_hours_end"`
	SquarespaceAPIKey   *string `json:"squarespace_api_key"`
}

// SettingsDTO is the API representation of the scheduler settings. The
// Squarespace key is masked to its last four characters.
type SettingsDTO struct {
	settings.Settings
	IsDefault bool `json:"is_default"`
}

const secretMask = "****"

func toSettingsDTO(cfg settings.Settings, isDefault bool) *SettingsDTO {
	cfg.SquarespaceAPIKey = maskSecret(cfg.SquarespaceAPIKey)
	return &SettingsDTO{Settings: cfg, IsDefault: isDefault}
}

func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return secretMask
	}
	return secretMask + secret[len(secret)-4:]
}

// SettingsService reads and writes business settings.
type SettingsService struct {
	repo   settings.Repository
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(repo settings.Repository, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: logger}
}

// Get returns the stored settings, or the defaults when nothing was saved.
func (s *SettingsService) Get(ctx context.Context) (*SettingsDTO, error) {
	cfg, found, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return toSettingsDTO(cfg, !found), nil
}

// Current returns the effective settings, secrets included, and falls back to
// the defaults if the store cannot be read.
func (s *SettingsService) Current(ctx context.Context) settings.Settings {
	cfg, _, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("using default settings", zap.Error(err))
		return settings.Defaults()
	}
	return cfg
}

func (s *SettingsService) load(ctx context.Context) (settings.Settings, bool, error) {
	cfg, found, err := s.repo.Get(ctx)
	if err != nil {
		return settings.Settings{}, false, fmt.Errorf("failed to load settings: %w", err)
	}
	if !found {
		return settings.Defaults(), false, nil
	}
	return cfg, true, nil
}

// Update merges req into the current settings, validates and saves them.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*SettingsDTO, error) {
	cfg, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if req.BusinessName != nil {
		cfg.BusinessName = *req.BusinessName
	}
	if req.EmailTemplate != nil {
		cfg.EmailTemplate = *req.EmailTemplate
	}
	if req.SlotDurationMinutes != nil {
		cfg.SlotDurationMinutes = *req.SlotDurationMinutes
	}
	if req.BusinessHoursStart != nil {
		cfg.BusinessHoursStart = *req.BusinessHoursStart
	}
	if req.BusinessHoursEnd != nil {
		cfg.BusinessHoursEnd = *req.BusinessHoursEnd
	}
	// A masked key echoed back from GET leaves the stored key untouched.
	if req.SquarespaceAPIKey != nil && !strings.HasPrefix(*req.SquarespaceAPIKey, secretMask) {
		cfg.SquarespaceAPIKey = *req.SquarespaceAPIKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Set(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info("settings updated",
		zap.String("business_name", cfg.BusinessName),
		zap.Int("slot_duration_minutes", cfg.SlotDurationMinutes),
	)
	return toSettingsDTO(cfg, false), nil
}

// Reset discards saved settings so the defaults apply again.
func (s *SettingsService) Reset(ctx context.Context) (*SettingsDTO, error) {
	if err := s.repo.Delete(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset settings: %w", err)
	}
	s.logger.Info("settings reset to defaults")
	return toSettingsDTO(settings.Defaults(), true), nil
}
