package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-catalog/library"
)

const (
	minTitleWidth     = 10
	defaultTitleWidth = 40
	// ID, genre and availability columns plus separators.
	fixedColumnsWidth = 32
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// app carries state shared by all subcommands.
type app struct {
	cfg     library.Config
	asJSON  bool
	verbose bool
	mgr     *library.LibraryManager
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: library.DefaultConfig()}

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library catalog and membership bookkeeping",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.mgr == nil {
				return nil
			}
			return a.mgr.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.DBPath, "db", a.cfg.DBPath, "path to the SQLite database (env LIBRARY_DB)")
	flags.StringVar(&a.cfg.Driver, "driver", a.cfg.Driver, "sqlite driver: sqlite3 or sqlite (env LIBRARY_DB_DRIVER)")
	flags.BoolVar(&a.asJSON, "json", false, "print results as JSON")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log circulation events to stderr")

	root.AddCommand(newBookCmd(a), newMemberCmd(a))
	return root
}

// open merges environment configuration with explicit flags and opens the catalog.
func (a *app) open(cmd *cobra.Command) error {
	envCfg, err := library.LoadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("db") {
		a.cfg.DBPath = envCfg.DBPath
	}
	if !flags.Changed("driver") {
		a.cfg.Driver = envCfg.Driver
	}
	a.cfg.LogLevel = envCfg.LogLevel
	if a.verbose {
		a.cfg.LogLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.cfg.LogLevel}))
	a.mgr, err = library.NewLibraryManager(a.cfg, library.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	return nil
}

// ------------------ book ------------------

func newBookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "book", Short: "Manage catalog entries"}

	var genre string
	add := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add an available book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.mgr.AddBook(args[0], genre)
			if err != nil {
				return err
			}
			return a.print(cmd, b, func(w io.Writer) {
				fmt.Fprintf(w, "Book added with ID %d.\n", b.ID)
			})
		},
	}
	add.Flags().StringVarP(&genre, "genre", "g", "", "one of: "+genreLabels())
	_ = add.MarkFlagRequired("genre")

	var listGenre string
	list := &cobra.Command{
		Use:   "list",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				books []*library.Book
				err   error
			)
			if listGenre != "" {
				books, err = a.mgr.BooksByGenre(listGenre)
			} else {
				books, err = a.mgr.GetAllBooks()
			}
			if err != nil {
				return err
			}
			return a.printBooks(cmd, books)
		},
	}
	list.Flags().StringVarP(&listGenre, "genre", "g", "", "only list books of this genre")

	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search books by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.mgr.SearchBooks(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.printBooks(cmd, books)
		},
	}

	borrow := &cobra.Command{
		Use:   "borrow ID",
		Short: "Borrow an available book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := a.mgr.BorrowBook(id)
			if err != nil {
				return err
			}
			return a.print(cmd, b, func(w io.Writer) {
				fmt.Fprintf(w, "Book '%s' borrowed.\n", b.Title)
			})
		},
	}

	var late bool
	ret := &cobra.Command{
		Use:   "return ID",
		Short: "Return a book, optionally flagging it as late",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := a.mgr.ReturnBook(id, late)
			if err != nil && !errors.Is(err, library.ErrLateReturn) {
				return err
			}
			if err != nil {
				// The return went through; lateness is only reported.
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}
			return a.print(cmd, b, func(w io.Writer) {
				fmt.Fprintf(w, "Book '%s' returned and available.\n", b.Title)
			})
		},
	}
	ret.Flags().BoolVar(&late, "late", false, "the book is returned after its due date")

	genres := &cobra.Command{
		Use:   "genres",
		Short: "List the known genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.print(cmd, library.Genres(), func(w io.Writer) {
				for _, g := range library.Genres() {
					fmt.Fprintln(w, g)
				}
			})
		},
	}

	cmd.AddCommand(add, list, search, borrow, ret, genres)
	return cmd
}

// ------------------ member ------------------

func newMemberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "member", Short: "Manage members"}

	var level string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.mgr.AddMember(args[0], level)
			if err != nil {
				return err
			}
			return a.print(cmd, m, func(w io.Writer) {
				fmt.Fprintf(w, "Member added with ID %d.\n", m.ID)
			})
		},
	}
	add.Flags().StringVarP(&level, "level", "l", library.Basic.String(), "one of: "+levelLabels())

	list := &cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			members, err := a.mgr.GetAllMembers()
			if err != nil {
				return err
			}
			return a.print(cmd, members, func(w io.Writer) {
				if len(members) == 0 {
					fmt.Fprintln(w, "No members registered.")
					return
				}
				fmt.Fprintf(w, "%-5s %-30s %-10s %6s\n", "ID", "Name", "Level", "Fee")
				fmt.Fprintln(w, strings.Repeat("-", 54))
				for _, m := range members {
					fmt.Fprintln(w, library.PrettyMember(m))
				}
			})
		},
	}

	fee := &cobra.Command{
		Use:   "fee ID",
		Short: "Show a member's annual fee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := a.mgr.MemberFee(id)
			if err != nil {
				return err
			}
			return a.print(cmd, map[string]any{"member_id": id, "fee": f}, func(w io.Writer) {
				fmt.Fprintln(w, f)
			})
		},
	}

	levels := &cobra.Command{
		Use:   "levels",
		Short: "List membership levels and their fees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			type row struct {
				Level library.MembershipLevel `json:"level"`
				Fee   int                     `json:"fee"`
			}
			var rows []row
			for _, l := range library.MembershipLevels() {
				rows = append(rows, row{Level: l, Fee: l.Fee()})
			}
			return a.print(cmd, rows, func(w io.Writer) {
				for _, r := range rows {
					fmt.Fprintf(w, "%-10s %6d\n", r.Level, r.Fee)
				}
			})
		},
	}

	cmd.AddCommand(add, list, fee, levels)
	return cmd
}

// ------------------ output ------------------

// print writes v as JSON when --json is set, otherwise calls text.
func (a *app) print(cmd *cobra.Command, v any, text func(io.Writer)) error {
	if a.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(cmd.OutOrStdout())
	return nil
}

func (a *app) printBooks(cmd *cobra.Command, books []*library.Book) error {
	return a.print(cmd, books, func(w io.Writer) {
		if len(books) == 0 {
			fmt.Fprintln(w, "No books found.")
			return
		}
		width := titleWidth(w)
		fmt.Fprintf(w, "%-5s %-*s %-12s %-10s\n", "ID", width, "Title", "Genre", "Available")
		fmt.Fprintln(w, strings.Repeat("-", width+fixedColumnsWidth))
		for _, b := range books {
			fmt.Fprintln(w, library.PrettyBook(b, width))
		}
	})
}

// titleWidth fits the title column to the terminal when w is one.
func titleWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultTitleWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return defaultTitleWidth
	}
	return max(cols-fixedColumnsWidth, minTitleWidth)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

func genreLabels() string {
	var labels []string
	for _, g := range library.Genres() {
		labels = append(labels, g.String())
	}
	return strings.Join(labels, ", ")
}

func levelLabels() string {
	var labels []string
	for _, l := range library.MembershipLevels() {
		labels = append(labels, l.String())
	}
	return strings.Join(labels, ", ")
}
