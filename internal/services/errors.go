package services

import "errors"

var (
	// ErrValidation is returned when caller input violates a contract.
	// It is always wrapped with the specific failing reason.
	ErrValidation = errors.New("validation failed")

	// ErrCardNotFound is returned when a referenced card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrAuthenticationFailed is returned when the identity provider
	// rejects the credentials. Carries no detail about which field was
	// wrong.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrRegistrationFailed is returned when the identity provider
	// rejects account creation.
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrAlreadyAuthenticated is returned when signing in over an
	// existing session. Role is fixed for the session lifetime; sign
	// out first.
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// ErrNotAuthenticated is returned by operations that require a
	// signed-in principal.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPaymentDeclined is returned when the gateway rejects a charge.
	ErrPaymentDeclined = errors.New("payment declined, please try again or use another payment method")

	// ErrStorage wraps local persistence failures on mutating
	// operations. In-memory state is rolled back before it surfaces.
	ErrStorage = errors.New("storage failure")
)
