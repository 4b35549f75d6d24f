package library

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// LibraryManager is a thin façade over the Database, keeping CLI code simple.
type LibraryManager struct {
	db     *Database
	logger *slog.Logger
}

// ManagerOption configures a LibraryManager.
type ManagerOption func(*LibraryManager)

// WithLogger sets the logger used for circulation events. The default
// discards everything.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(lm *LibraryManager) {
		if logger != nil {
			lm.logger = logger
		}
	}
}

// NewLibraryManager opens (or creates) the database described by cfg.
func NewLibraryManager(cfg Config, opts ...ManagerOption) (*LibraryManager, error) {
	db, err := NewDatabase(cfg.Driver, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	lm := &LibraryManager{db: db, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(lm)
	}
	lm.logger.Debug("catalog opened", "driver", cfg.Driver, "path", cfg.DBPath)
	return lm, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

// ------------------ Book helpers ------------------

// AddBook creates an available book from a genre label and stores it.
func (lm *LibraryManager) AddBook(title, genre string) (*Book, error) {
	g, err := ParseGenre(genre)
	if err != nil {
		return nil, err
	}
	b, err := NewBook(title, g)
	if err != nil {
		return nil, err
	}
	if _, err := lm.db.AddBook(b); err != nil {
		return nil, fmt.Errorf("store book: %w", err)
	}
	lm.logger.Debug("book added", "id", b.ID, "title", b.Title, "genre", b.Genre)
	return b, nil
}

func (lm *LibraryManager) GetBook(id int64) (*Book, error) { return lm.db.GetBook(id) }
func (lm *LibraryManager) GetAllBooks() ([]*Book, error)   { return lm.db.GetAllBooks() }

func (lm *LibraryManager) BooksByGenre(genre string) ([]*Book, error) {
	g, err := ParseGenre(genre)
	if err != nil {
		return nil, err
	}
	return lm.db.BooksByGenre(g)
}

// ------------------ Member helpers ------------------

// AddMember creates a member from a tier label and stores it.
func (lm *LibraryManager) AddMember(name, level string) (*Member, error) {
	l, err := ParseMembershipLevel(level)
	if err != nil {
		return nil, err
	}
	m := NewMember(name, l)
	if _, err := lm.db.AddMember(m); err != nil {
		return nil, fmt.Errorf("store member: %w", err)
	}
	lm.logger.Debug("member added", "id", m.ID, "name", m.Name, "level", m.Level)
	return m, nil
}

func (lm *LibraryManager) GetMember(id int64) (*Member, error) { return lm.db.GetMember(id) }
func (lm *LibraryManager) GetAllMembers() ([]*Member, error)  { return lm.db.GetAllMembers() }

// MemberFee looks up a member and returns the fee for their tier.
func (lm *LibraryManager) MemberFee(id int64) (int, error) {
	m, err := lm.db.GetMember(id)
	if err != nil {
		return 0, err
	}
	return m.Fee()
}

// ------------------ Search ------------------

func (lm *LibraryManager) SearchBooks(q string) ([]*Book, error) {
	return lm.db.SearchBooks(q)
}

// ------------------ Circulation ------------------

// BorrowBook marks a stored book as out. Nothing is written when the book is
// already out.
func (lm *LibraryManager) BorrowBook(id int64) (*Book, error) {
	b, err := lm.db.GetBook(id)
	if err != nil {
		return nil, err
	}
	if err := b.Borrow(); err != nil {
		return b, err
	}
	if err := lm.db.SetBookAvailability(b.ID, b.Available); err != nil {
		return nil, fmt.Errorf("persist borrow: %w", err)
	}
	lm.logger.Debug("book borrowed", "id", b.ID, "title", b.Title)
	return b, nil
}

// ReturnBook makes a stored book available again. The new state is written
// even for a late return, in which case ErrLateReturn is returned after the
// write succeeds.
func (lm *LibraryManager) ReturnBook(id int64, late bool) (*Book, error) {
	b, err := lm.db.GetBook(id)
	if err != nil {
		return nil, err
	}
	returnErr := b.Return(late)
	if err := lm.db.SetBookAvailability(b.ID, b.Available); err != nil {
		return nil, fmt.Errorf("persist return: %w", err)
	}
	if errors.Is(returnErr, ErrLateReturn) {
		lm.logger.Info("book returned late", "id", b.ID, "title", b.Title)
	} else {
		lm.logger.Debug("book returned", "id", b.ID, "title", b.Title)
	}
	return b, returnErr
}

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b *Book, titleWidth int) string {
	return fmt.Sprintf("%-5d %-*s %-12s %-10t", b.ID, titleWidth, truncateString(b.Title, titleWidth), b.Genre, b.Available)
}

// PrettyMember formats a member for lists. Members with an unknown tier show
// no fee.
func PrettyMember(m *Member) string {
	fee := "-"
	if f, err := m.Fee(); err == nil {
		fee = fmt.Sprint(f)
	}
	return fmt.Sprintf("%-5d %-30s %-10s %6s", m.ID, truncateString(m.Name, 30), m.Level, fee)
}

func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
