package models

// NotificationSettings mirrors the toggles on the settings screen.
type NotificationSettings struct {
	RideUpdates bool `json:"ride_updates"`
	Promotions  bool `json:"promotions"`
	Payments    bool `json:"payments"`
}

// DefaultNotificationSettings returns the settings applied before the
// user has ever touched the toggles.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		RideUpdates: true,
		Promotions:  false,
		Payments:    true,
	}
}
