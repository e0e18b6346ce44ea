package types

import (
	"strings"

	"github.com/google/uuid"
)

// RankedCandidate is a search result proposed or re-ranked by the provider.
// Calories is only filled for calorie-constrained searches.
type RankedCandidate struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Calories    *float64 `json:"calories,omitempty"`
}

// UserContext identifies a signed-in user and carries their advisory
// constraints. A nil *UserContext means the request is anonymous.
type UserContext struct {
	UserID      uuid.UUID
	Allergies   []string
	Diets       []string
	Preferences []string
}

// HasConstraints reports whether there is anything to tell the provider.
func (u *UserContext) HasConstraints() bool {
	return u != nil && len(u.Allergies)+len(u.Diets)+len(u.Preferences) > 0
}

// AuthorID returns the user id to record as author, or nil when anonymous.
func (u *UserContext) AuthorID() *uuid.UUID {
	if u == nil || u.UserID == uuid.Nil {
		return nil
	}
	id := u.UserID
	return &id
}

// NormalizeTitle is the identity used for generation locks: trimmed and lower-cased.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
