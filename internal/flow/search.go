package flow

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/DigneZzZ/remnabot/internal/models"
)

// MaxMatches caps the disambiguation list
const MaxMatches = 10

// LooksLikeUUID reports whether the query should be tried as an id lookup
func LooksLikeUUID(q string) bool {
	_, err := uuid.Parse(strings.TrimSpace(q))
	return err == nil
}

func userKeys(u models.User) []string {
	keys := []string{u.Username, u.ShortUUID, u.UUID}
	if u.Email != nil {
		keys = append(keys, *u.Email)
	}
	if u.TelegramID != nil {
		keys = append(keys, strconv.FormatInt(*u.TelegramID, 10))
	}
	return keys
}

// MatchUsers returns exact matches on username, short id, email or telegram
// id if there are any, otherwise substring matches on the same fields.
// Comparison is case-insensitive and the result is capped at MaxMatches.
func MatchUsers(query string, users []models.User) []models.User {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var exact, partial []models.User
	for _, u := range users {
		isExact, isPartial := false, false
		for _, k := range userKeys(u) {
			k = strings.ToLower(k)
			if k == "" {
				continue
			}
			if k == q {
				isExact = true
				break
			}
			if strings.Contains(k, q) {
				isPartial = true
			}
		}
		switch {
		case isExact:
			exact = append(exact, u)
		case isPartial:
			partial = append(partial, u)
		}
	}

	out := exact
	if len(out) == 0 {
		out = partial
	}
	if len(out) > MaxMatches {
		out = out[:MaxMatches]
	}
	return out
}
