package library

import "fmt"

// Book represents a catalog entry and whether it can currently be borrowed.
// ID is assigned by the Database and stays zero for books never stored.
type Book struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Genre     Genre  `json:"genre"`
	Available bool   `json:"available"`
}

// BookOption configures a Book at construction.
type BookOption func(*Book)

// WithAvailability overrides the default (available) initial state.
func WithAvailability(available bool) BookOption {
	return func(b *Book) {
		b.Available = available
	}
}

// NewBook creates an available book. The genre must be one of the declared
// genres; the title is taken as is.
func NewBook(title string, genre Genre, opts ...BookOption) (*Book, error) {
	if !genre.Valid() {
		return nil, fmt.Errorf("%w: %v must be one of the declared genres", ErrInvalidArgument, genre)
	}
	b := &Book{Title: title, Genre: genre, Available: true}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Borrow marks the book as out. Borrowing a book that is already out fails
// with ErrBookNotAvailable and leaves it unchanged.
func (b *Book) Borrow() error {
	if !b.Available {
		return fmt.Errorf("%w: the book '%s' is currently not available", ErrBookNotAvailable, b.Title)
	}
	b.Available = false
	return nil
}

// Return always makes the book available again. When isLate is set it then
// reports ErrLateReturn; the availability change is kept.
func (b *Book) Return(isLate bool) error {
	b.Available = true
	if isLate {
		return fmt.Errorf("%w: the book '%s' was returned late, late fees may apply", ErrLateReturn, b.Title)
	}
	return nil
}

// Member represents a registered library member.
type Member struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Level MembershipLevel `json:"membership_level"`
}

// NewMember does not check level; an unknown tier is only rejected by Fee.
func NewMember(name string, level MembershipLevel) *Member {
	return &Member{Name: name, Level: level}
}

// Fee returns the annual fee for the member's tier.
func (m *Member) Fee() (int, error) {
	if !m.Level.Valid() {
		return 0, fmt.Errorf("%w: invalid membership level for member %s", ErrInvalidMembership, m.Name)
	}
	return m.Level.Fee(), nil
}
