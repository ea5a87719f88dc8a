package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"ridelink/internal/models"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	cvvPattern        = regexp.MustCompile(`^\d{3}$`)
	mastercardPrefix  = regexp.MustCompile(`^5[1-5]`)
)

// CardValidation is the outcome of validating raw card input. Reason is
// tied to the first failing check and is safe to show to the user.
type CardValidation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ValidateCard checks the raw card fields in order, short-circuiting on
// the first failure. It has no side effects.
func ValidateCard(number, expiry, cvv string) CardValidation {
	return validateCardAt(number, expiry, cvv, time.Now())
}

func validateCardAt(number, expiry, cvv string, now time.Time) CardValidation {
	if !cardNumberPattern.MatchString(stripSpaces(number)) {
		return CardValidation{Reason: "card number must contain 16 digits"}
	}

	match := expiryPattern.FindStringSubmatch(expiry)
	if match == nil {
		return CardValidation{Reason: "expiry date must be in MM/YY format"}
	}

	month, _ := strconv.Atoi(match[1])
	year, _ := strconv.Atoi(match[2])
	// Month granularity: a card expiring this month is still valid.
	if 2000+year < now.Year() || (2000+year == now.Year() && month < int(now.Month())) {
		return CardValidation{Reason: "card has expired"}
	}

	if !cvvPattern.MatchString(cvv) {
		return CardValidation{Reason: "CVV must contain 3 digits"}
	}

	return CardValidation{Valid: true}
}

// DetectBrand derives the card brand from the number prefix.
func DetectBrand(number string) models.CardBrand {
	clean := stripSpaces(number)

	switch {
	case strings.HasPrefix(clean, "4"):
		return models.CardBrandVisa
	case mastercardPrefix.MatchString(clean):
		return models.CardBrandMastercard
	default:
		return models.CardBrandUnknown
	}
}

// FormatCardNumber groups the digits in blocks of four for display.
func FormatCardNumber(number string) string {
	clean := stripSpaces(number)

	var chunks []string
	for i := 0; i < len(clean); i += 4 {
		end := i + 4
		if end > len(clean) {
			end = len(clean)
		}
		chunks = append(chunks, clean[i:end])
	}

	return strings.Join(chunks, " ")
}

// MaskCardNumber reduces a full PAN to its displayable masked form.
func MaskCardNumber(number string) string {
	clean := stripSpaces(number)
	if len(clean) < 4 {
		return "**** **** **** ????"
	}
	return "**** **** **** " + clean[len(clean)-4:]
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
