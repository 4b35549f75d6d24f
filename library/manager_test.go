package library

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, opts ...ManagerOption) *LibraryManager {
	t.Helper()
	cfg := Config{Driver: DriverPureGo, DBPath: filepath.Join(t.TempDir(), "lib.db")}
	mgr, err := NewLibraryManager(cfg, opts...)
	require.NoError(t, err, "mgr")
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestAddBookByLabel(t *testing.T) {
	mgr := newManager(t)

	b, err := mgr.AddBook("Dune", "science")
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.True(t, b.Available)

	_, err = mgr.AddBook("Odes", "poetry")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	books, err := mgr.GetAllBooks()
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestBorrowAndReturnArePersisted(t *testing.T) {
	mgr := newManager(t)
	b, err := mgr.AddBook("Dune", "SCIENCE")
	require.NoError(t, err)

	_, err = mgr.BorrowBook(b.ID)
	require.NoError(t, err)
	stored, err := mgr.GetBook(b.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)

	_, err = mgr.BorrowBook(b.ID)
	assert.ErrorIs(t, err, ErrBookNotAvailable)

	_, err = mgr.ReturnBook(b.ID, false)
	require.NoError(t, err)
	stored, err = mgr.GetBook(b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Available)
}

func TestLateReturnIsPersisted(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	mgr := newManager(t, WithLogger(logger))

	b, err := mgr.AddBook("Dune", "SCIENCE")
	require.NoError(t, err)
	_, err = mgr.BorrowBook(b.ID)
	require.NoError(t, err)

	returned, err := mgr.ReturnBook(b.ID, true)
	assert.ErrorIs(t, err, ErrLateReturn)
	require.NotNil(t, returned)
	assert.True(t, returned.Available)

	stored, err := mgr.GetBook(b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Available, "late return must still restore availability in storage")
	assert.Contains(t, logs.String(), "book returned late")
}

func TestCirculationOnUnknownBook(t *testing.T) {
	mgr := newManager(t)

	_, err := mgr.BorrowBook(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = mgr.ReturnBook(1, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemberFeeLookup(t *testing.T) {
	mgr := newManager(t)

	alice, err := mgr.AddMember("Alice", "GOLD")
	require.NoError(t, err)
	fee, err := mgr.MemberFee(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, fee)

	_, err = mgr.AddMember("Bob", "platinum")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = mgr.MemberFee(alice.ID + 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemberFeeRejectsStoredUnknownTier(t *testing.T) {
	mgr := newManager(t)
	id, err := mgr.db.AddMember(NewMember("Mallory", MembershipLevel(1)))
	require.NoError(t, err)

	_, err = mgr.MemberFee(id)
	assert.ErrorIs(t, err, ErrInvalidMembership)
}

func TestBooksByGenreLabel(t *testing.T) {
	mgr := newManager(t)
	_, err := mgr.AddBook("Steve Jobs", "biography")
	require.NoError(t, err)
	_, err = mgr.AddBook("Dune", "fiction")
	require.NoError(t, err)

	books, err := mgr.BooksByGenre("BIOGRAPHY")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Steve Jobs", books[0].Title)

	_, err = mgr.BooksByGenre("comics")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPrettyPrinters(t *testing.T) {
	b := &Book{ID: 3, Title: "A Very Long Title Indeed", Genre: History, Available: true}
	line := PrettyBook(b, 10)
	assert.Contains(t, line, "A Very ...")
	assert.Contains(t, line, "HISTORY")

	assert.Contains(t, PrettyMember(&Member{ID: 1, Name: "Alice", Level: Gold}), "500")
	assert.Contains(t, PrettyMember(&Member{ID: 2, Name: "Mallory", Level: 7}), "MembershipLevel(7)")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", truncateString("abc", 5))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
	assert.Equal(t, "ab...", truncateString("abcdefgh", 5))
	assert.Equal(t, "", truncateString("abc", 0))
}
