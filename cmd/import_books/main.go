package main

import (
	"fmt"
	"os"
	"strings"

	"library-catalog/library"
)

// seedBooks pairs titles with genre labels.
var seedBooks = []struct {
	title string
	genre string
}{
	{"1984", "FICTION"},
	{"Animal Farm", "FICTION"},
	{"The Diary of a Young Girl", "BIOGRAPHY"},
	{"The Art of War", "NON_FICTION"},
	{"The Fellowship of the Ring", "FICTION"},
	{"Dune", "SCIENCE"},
	{"A Brief History of Time", "SCIENCE"},
	{"The Origin of Species", "SCIENCE"},
	{"The Guns of August", "HISTORY"},
	{"SPQR: A History of Ancient Rome", "HISTORY"},
	{"The Three Musketeers", "FICTION"},
	{"Steve Jobs", "BIOGRAPHY"},
	{"Thinking, Fast and Slow", "NON_FICTION"},
}

var seedMembers = []struct {
	name  string
	level string
}{
	{"Alice", "GOLD"},
	{"Bob", "PREMIUM"},
	{"Charlie", "BASIC"},
}

func main() {
	cfg, err := library.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Clean up any existing database files
	fmt.Println("Cleaning up existing database files...")
	for _, file := range []string{cfg.DBPath, cfg.DBPath + "-shm", cfg.DBPath + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Println("Database cleanup complete.")

	manager, err := library.NewLibraryManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	fmt.Printf("Importing %d books into %s...\n", len(seedBooks), cfg.DBPath)

	successCount := 0
	errorCount := 0
	for _, s := range seedBooks {
		fmt.Printf("Importing: %s (%s)... ", s.title, s.genre)
		b, err := manager.AddBook(s.title, s.genre)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %d)\n", b.ID)
		successCount++
	}

	for _, s := range seedMembers {
		m, err := manager.AddMember(s.name, s.level)
		if err != nil {
			fmt.Printf("Member %s: ERROR - %v\n", s.name, err)
			errorCount++
			continue
		}
		fee, _ := m.Fee()
		fmt.Printf("Member %s registered as %s (ID: %d, fee: %d)\n", m.Name, m.Level, m.ID, fee)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nImported books:")
		books, err := manager.GetAllBooks()
		if err != nil {
			fmt.Printf("Error retrieving books: %v\n", err)
			return
		}
		fmt.Printf("%-3s %-50s %-12s\n", "ID", "Title", "Genre")
		fmt.Println(strings.Repeat("-", 67))
		for _, book := range books {
			fmt.Printf("%-3d %-50s %-12s\n", book.ID, truncateString(book.Title, 50), book.Genre)
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
