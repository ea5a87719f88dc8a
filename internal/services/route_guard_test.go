package services

import (
	"testing"

	"ridelink/internal/models"
)

func TestResolveRoute(t *testing.T) {
	initializing := models.Session{Status: models.SessionStatusInitializing}
	anonymous := models.Session{Status: models.SessionStatusReady}
	passenger := models.Session{
		Status: models.SessionStatusReady,
		User:   &models.User{ID: "user-1"},
		Role:   models.UserRolePassenger,
	}
	driver := models.Session{
		Status: models.SessionStatusReady,
		User:   &models.User{ID: "user-2"},
		Role:   models.UserRoleDriver,
	}

	tests := []struct {
		name    string
		screen  Screen
		session models.Session
		want    GuardDecision
	}{
		{"initializing suspends public screens", ScreenLogin, initializing, GuardDecision{Action: GuardSuspend}},
		{"initializing suspends protected screens", ScreenHome, initializing, GuardDecision{Action: GuardSuspend}},

		{"anonymous can reach login", ScreenLogin, anonymous, GuardDecision{Action: GuardAllow}},
		{"anonymous can reach register", ScreenRegister, anonymous, GuardDecision{Action: GuardAllow}},
		{"anonymous can reach driver registration", ScreenDriverRegister, anonymous, GuardDecision{Action: GuardAllow}},
		{"anonymous can reach password reset", ScreenForgotPassword, anonymous, GuardDecision{Action: GuardAllow}},
		{"anonymous is bounced from home", ScreenHome, anonymous, GuardDecision{Action: GuardRedirect, Target: ScreenLogin}},
		{"anonymous is bounced from payments", ScreenPaymentMethods, anonymous, GuardDecision{Action: GuardRedirect, Target: ScreenLogin}},
		{"anonymous is bounced from driver screens", ScreenDriverRides, anonymous, GuardDecision{Action: GuardRedirect, Target: ScreenLogin}},

		{"passenger is bounced from login to home", ScreenLogin, passenger, GuardDecision{Action: GuardRedirect, Target: ScreenHome}},
		{"passenger is bounced from register to home", ScreenRegister, passenger, GuardDecision{Action: GuardRedirect, Target: ScreenHome}},
		{"passenger can reach home", ScreenHome, passenger, GuardDecision{Action: GuardAllow}},
		{"passenger can reach booking", ScreenBooking, passenger, GuardDecision{Action: GuardAllow}},
		{"passenger can reach password reset", ScreenForgotPassword, passenger, GuardDecision{Action: GuardAllow}},

		{"driver is bounced from login to driver profile", ScreenLogin, driver, GuardDecision{Action: GuardRedirect, Target: ScreenDriverProfile}},
		{"driver can reach driver rides", ScreenDriverRides, driver, GuardDecision{Action: GuardAllow}},
		{"driver can reach settings", ScreenSettings, driver, GuardDecision{Action: GuardAllow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRoute(tt.screen, tt.session); got != tt.want {
				t.Errorf("ResolveRoute(%q) = %+v, want %+v", tt.screen, got, tt.want)
			}
		})
	}
}

func TestHomeScreen(t *testing.T) {
	if got := HomeScreen(models.UserRolePassenger); got != ScreenHome {
		t.Errorf("passenger home = %q, want %q", got, ScreenHome)
	}
	if got := HomeScreen(models.UserRoleDriver); got != ScreenDriverProfile {
		t.Errorf("driver home = %q, want %q", got, ScreenDriverProfile)
	}
}
