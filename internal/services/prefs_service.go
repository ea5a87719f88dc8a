package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"ridelink/internal/models"
	"ridelink/pkg/keyvalue"
	"ridelink/pkg/logger"
)

const (
	notificationSettingsKey = "notificationSettings"
	driverOnlineStatusKey   = "driverOnlineStatus"
)

// PrefsService persists the small feature toggles the settings and
// driver-profile screens own: notification preferences and the driver
// online/offline flag.
type PrefsService interface {
	NotificationSettings(ctx context.Context) models.NotificationSettings
	SetNotificationSettings(ctx context.Context, settings models.NotificationSettings) error

	DriverOnline(ctx context.Context) bool
	SetDriverOnline(ctx context.Context, online bool) error
}

type prefsService struct {
	store  keyvalue.Store
	logger *logger.Logger
}

func NewPrefsService(store keyvalue.Store, logger *logger.Logger) PrefsService {
	return &prefsService{
		store:  store,
		logger: logger,
	}
}

func (s *prefsService) NotificationSettings(ctx context.Context) models.NotificationSettings {
	raw, err := s.store.Get(ctx, notificationSettingsKey)
	if err != nil {
		if !errors.Is(err, keyvalue.ErrKeyNotFound) {
			s.logger.WithError(err).Warn("Failed to read notification settings, using defaults")
		}
		return models.DefaultNotificationSettings()
	}

	var settings models.NotificationSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.logger.WithError(err).Warn("Notification settings are corrupt, using defaults")
		return models.DefaultNotificationSettings()
	}
	return settings
}

func (s *prefsService) SetNotificationSettings(ctx context.Context, settings models.NotificationSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode notification settings: %w", err)
	}
	if err := s.store.Set(ctx, notificationSettingsKey, string(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *prefsService) DriverOnline(ctx context.Context) bool {
	raw, err := s.store.Get(ctx, driverOnlineStatusKey)
	if err != nil {
		return false
	}
	online, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return online
}

func (s *prefsService) SetDriverOnline(ctx context.Context, online bool) error {
	if err := s.store.Set(ctx, driverOnlineStatusKey, strconv.FormatBool(online)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}
