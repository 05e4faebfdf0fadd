package flow

import (
	"math"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/DigneZzZ/remnabot/internal/models"
)

const (
	bytesPerGB = int64(1) << 30

	maxTrafficGB  = 1_000_000
	maxExpireDays = 3650
)

var (
	usernameRe    = regexp.MustCompile(`^[A-Za-z0-9_-]{3,36}$`)
	countryCodeRe = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// ParseFunc validates raw text into the value stored for a field
type ParseFunc func(text string) (any, error)

// Required accepts any non-empty text up to maxLen characters.
func Required(maxLen int) ParseFunc {
	return func(text string) (any, error) {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, invalid("Value must not be empty.")
		}
		if utf8.RuneCountInString(text) > maxLen {
			return nil, invalid("Value is too long (max %d characters).", maxLen)
		}
		return text, nil
	}
}

// ParseAddress accepts a host name or IP without spaces or scheme.
func ParseAddress(text string) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("Address must not be empty.")
	}
	if strings.ContainsAny(text, " \t/") {
		return nil, invalid("Address must be a bare host name or IP, without scheme or path.")
	}
	if len(text) > 253 {
		return nil, invalid("Address is too long.")
	}
	return text, nil
}

// ParsePort accepts an integer in 1..65535.
func ParsePort(text string) (any, error) {
	port, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil, invalid("Port must be a number.")
	}
	if port < 1 || port > 65535 {
		return nil, invalid("Port must be between 1 and 65535.")
	}
	return port, nil
}

// IntRange accepts an integer in [lo, hi].
func IntRange(lo, hi int) ParseFunc {
	return func(text string) (any, error) {
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, invalid("Value must be a whole number.")
		}
		if n < lo || n > hi {
			return nil, invalid("Value must be between %d and %d.", lo, hi)
		}
		return n, nil
	}
}

// ParseUsername accepts 3-36 characters of letters, digits, '_' and '-'.
func ParseUsername(text string) (any, error) {
	text = strings.TrimSpace(text)
	if !usernameRe.MatchString(text) {
		return nil, invalid("Username must be 3-36 characters: letters, digits, '_' or '-'.")
	}
	return text, nil
}

// ParseTrafficGB accepts a GB amount and returns bytes. 0, "unlimited"
// and "∞" mean no limit.
func ParseTrafficGB(text string) (any, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	switch text {
	case "0", "unlimited", "∞", "inf":
		return int64(0), nil
	}
	gb, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil || math.IsNaN(gb) {
		return nil, invalid("Traffic must be a number of GB, or 0 for unlimited.")
	}
	if gb < 0 || gb > maxTrafficGB {
		return nil, invalid("Traffic must be between 0 and %d GB.", maxTrafficGB)
	}
	limit := int64(gb * float64(bytesPerGB))
	if gb > 0 && limit == 0 {
		return nil, invalid("Traffic is too small. Use 0 for unlimited.")
	}
	return limit, nil
}

// ParseDays accepts a day count in 1..3650.
func ParseDays(text string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil, invalid("Days must be a whole number.")
	}
	if n < 1 || n > maxExpireDays {
		return nil, invalid("Days must be between 1 and %d.", maxExpireDays)
	}
	return n, nil
}

// ParseCountryCode accepts a two-letter code and upper-cases it.
func ParseCountryCode(text string) (any, error) {
	text = strings.TrimSpace(text)
	if !countryCodeRe.MatchString(text) {
		return nil, invalid("Country code must be two letters, e.g. DE.")
	}
	return strings.ToUpper(text), nil
}

// ParseEmail accepts a single address.
func ParseEmail(text string) (any, error) {
	text = strings.TrimSpace(text)
	addr, err := mail.ParseAddress(text)
	if err != nil || addr.Address != text {
		return nil, invalid("Email address is not valid.")
	}
	return text, nil
}

// ParseTelegramID accepts a positive integer id.
func ParseTelegramID(text string) (any, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return nil, invalid("Telegram ID must be a positive number.")
	}
	return id, nil
}

// OneOf accepts one of values, compared case-insensitively, and returns
// the canonical spelling.
func OneOf(values ...string) ParseFunc {
	return func(text string) (any, error) {
		text = strings.TrimSpace(text)
		for _, v := range values {
			if strings.EqualFold(v, text) {
				return v, nil
			}
		}
		return nil, invalid("Value must be one of: %s.", strings.Join(values, ", "))
	}
}

// SecurityLayers lists the accepted host security layers
var SecurityLayers = []string{models.SecurityDefault, models.SecurityTLS, models.SecurityNone}
