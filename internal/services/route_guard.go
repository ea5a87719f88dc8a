package services

import "ridelink/internal/models"

// Screen identifies a navigable screen in the UI layer. The guard only
// needs identifiers; rendering is entirely out of this core's hands.
type Screen string

const (
	ScreenLogin          Screen = "login"
	ScreenRegister       Screen = "register"
	ScreenDriverRegister Screen = "driver-register"
	ScreenForgotPassword Screen = "forgot-password"
	ScreenHome           Screen = "home"
	ScreenMap            Screen = "map"
	ScreenBooking        Screen = "booking"
	ScreenProfile        Screen = "profile"
	ScreenPaymentMethods Screen = "payment-methods"
	ScreenSettings       Screen = "settings"
	ScreenDriverProfile  Screen = "driver-profile"
	ScreenDriverRides    Screen = "driver-rides"
)

type GuardAction string

const (
	// GuardSuspend means render nothing until the session is ready.
	GuardSuspend  GuardAction = "suspend"
	GuardRedirect GuardAction = "redirect"
	GuardAllow    GuardAction = "allow"
)

type GuardDecision struct {
	Action GuardAction `json:"action"`
	Target Screen      `json:"target,omitempty"`
}

// publicScreens are reachable without a signed-in principal.
var publicScreens = map[Screen]bool{
	ScreenLogin:          true,
	ScreenRegister:       true,
	ScreenDriverRegister: true,
	ScreenForgotPassword: true,
}

// entryScreens bounce an authenticated user to their home screen.
var entryScreens = map[Screen]bool{
	ScreenLogin:    true,
	ScreenRegister: true,
}

// ResolveRoute applies the navigation decision table, in order, for the
// given screen and session snapshot.
func ResolveRoute(screen Screen, session models.Session) GuardDecision {
	if session.Status == models.SessionStatusInitializing {
		return GuardDecision{Action: GuardSuspend}
	}

	if session.User == nil {
		if !publicScreens[screen] {
			return GuardDecision{Action: GuardRedirect, Target: ScreenLogin}
		}
		return GuardDecision{Action: GuardAllow}
	}

	if entryScreens[screen] {
		return GuardDecision{Action: GuardRedirect, Target: HomeScreen(session.Role)}
	}

	return GuardDecision{Action: GuardAllow}
}

// HomeScreen maps a role to its landing screen.
func HomeScreen(role models.UserRole) Screen {
	if role == models.UserRoleDriver {
		return ScreenDriverProfile
	}
	return ScreenHome
}
