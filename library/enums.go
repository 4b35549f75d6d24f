package library

import (
	"fmt"
	"strings"
)

// Genre classifies a book's subject. The zero value is not a genre.
type Genre int

const (
	Fiction Genre = iota + 1
	NonFiction
	Science
	History
	Biography
)

var genreNames = map[Genre]string{
	Fiction:    "FICTION",
	NonFiction: "NON_FICTION",
	Science:    "SCIENCE",
	History:    "HISTORY",
	Biography:  "BIOGRAPHY",
}

// Genres returns every genre in declaration order.
func Genres() []Genre {
	return []Genre{Fiction, NonFiction, Science, History, Biography}
}

// Valid reports whether g is one of the declared genres.
func (g Genre) Valid() bool {
	_, ok := genreNames[g]
	return ok
}

func (g Genre) String() string {
	if name, ok := genreNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Genre(%d)", int(g))
}

// MarshalText renders the label so JSON output reads "SCIENCE" rather than 3.
func (g Genre) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// ParseGenre looks up a genre by label. Matching ignores case and accepts
// "non-fiction" or "non fiction" for NON_FICTION.
func ParseGenre(label string) (Genre, error) {
	key := normalizeLabel(label)
	for _, g := range Genres() {
		if genreNames[g] == key {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown genre %q", ErrInvalidArgument, label)
}

// MembershipLevel is a member's subscription tier. The value of each tier
// is its annual fee.
type MembershipLevel int

const (
	Basic   MembershipLevel = 100
	Premium MembershipLevel = 200
	Gold    MembershipLevel = 500
)

var levelNames = map[MembershipLevel]string{
	Basic:   "BASIC",
	Premium: "PREMIUM",
	Gold:    "GOLD",
}

// MembershipLevels returns every tier from cheapest to most expensive.
func MembershipLevels() []MembershipLevel {
	return []MembershipLevel{Basic, Premium, Gold}
}

// Valid reports whether l is one of the declared tiers.
func (l MembershipLevel) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// Fee is the tier's annual fee. It is meaningless for invalid tiers.
func (l MembershipLevel) Fee() int { return int(l) }

func (l MembershipLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("MembershipLevel(%d)", int(l))
}

func (l MembershipLevel) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// ParseMembershipLevel looks up a tier by label, ignoring case.
func ParseMembershipLevel(label string) (MembershipLevel, error) {
	key := normalizeLabel(label)
	for _, l := range MembershipLevels() {
		if levelNames[l] == key {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown membership level %q", ErrInvalidArgument, label)
}

func normalizeLabel(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
