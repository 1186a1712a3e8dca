package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/models"
)

const maxLinkLabelLength = 100

var (
	whatsAppURLPattern   = regexp.MustCompile(`(?i)^https?://(wa\.me|api\.whatsapp\.com)/\d+$`)
	whatsAppPhonePattern = regexp.MustCompile(`^\+?\d{7,15}$`)
	emailPattern         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneCharsPattern    = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	httpURLPattern       = regexp.MustCompile(`(?i)^https?://`)
	nonDigitPattern      = regexp.MustCompile(`\D`)
	telStripPattern      = regexp.MustCompile(`[^\d+]`)
)

type linkValidator func(platform models.Platform, raw string) (string, error)

var linkValidators = map[models.Platform]linkValidator{
	models.PlatformWhatsApp: validateWhatsApp,
	models.PlatformEmail:    validateEmail,
	models.PlatformPhone:    validatePhone,
}

// ValidateLink checks raw against the rules of platform and returns the value to store.
func ValidateLink(platform models.Platform, raw string) (string, error) {
	if !platform.Valid() {
		return "", errs.NewInvalidFieldError("platform", fmt.Sprintf("unsupported platform %q", platform))
	}
	value := strings.TrimSpace(raw)
	if validate, ok := linkValidators[platform]; ok {
		return validate(platform, value)
	}
	return validateWebURL(platform, value)
}

func validateWhatsApp(_ models.Platform, value string) (string, error) {
	if whatsAppURLPattern.MatchString(value) {
		return value, nil
	}
	if whatsAppPhonePattern.MatchString(value) {
		return "https://wa.me/" + nonDigitPattern.ReplaceAllString(value, ""), nil
	}
	return "", linkError(fmt.Sprintf("Invalid WhatsApp link or number: %s", value))
}

func validateEmail(_ models.Platform, value string) (string, error) {
	if !emailPattern.MatchString(value) {
		return "", linkError(fmt.Sprintf("Invalid email address: %s", value))
	}
	return value, nil
}

// phone numbers are stored as typed; tel: is added when redirecting
func validatePhone(_ models.Platform, value string) (string, error) {
	if !phoneCharsPattern.MatchString(value) || nonDigitPattern.ReplaceAllString(value, "") == "" {
		return "", linkError(fmt.Sprintf("Invalid phone number: %s", value))
	}
	return value, nil
}

func validateWebURL(platform models.Platform, value string) (string, error) {
	if !httpURLPattern.MatchString(value) {
		return "", linkError(fmt.Sprintf("Invalid URL for platform %s: %s", platform, value))
	}
	return value, nil
}

func linkError(msg string) error {
	e := errs.NewValidationError(msg)
	e.Field = "url"
	return e
}

// ValidateLabel trims a link label and enforces its length; empty means "no label".
func ValidateLabel(label *string) (*string, error) {
	if label == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*label)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > maxLinkLabelLength {
		return nil, errs.NewInvalidFieldError("label", fmt.Sprintf("must be at most %d characters", maxLinkLabelLength))
	}
	return &trimmed, nil
}

// FormatRedirectURL turns a stored link value into something a browser can open.
func FormatRedirectURL(platform models.Platform, stored string) string {
	switch platform {
	case models.PlatformPhone:
		return "tel:" + telStripPattern.ReplaceAllString(stored, "")
	case models.PlatformEmail:
		if strings.HasPrefix(strings.ToLower(stored), "mailto:") {
			return stored
		}
		return "mailto:" + stored
	case models.PlatformWhatsApp:
		return "https://wa.me/" + nonDigitPattern.ReplaceAllString(stored, "")
	default:
		return stored
	}
}
