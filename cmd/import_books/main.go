// Bulk-loads a book catalog into the library's data directory.
//
// The catalog is a JSON array of objects with title, author, and an
// optional stock (default 1):
//
//	[{"title": "1984", "author": "George Orwell", "stock": 3}, ...]
//
// Usage: import_books [catalog.json]
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"library-desk/library"

	"github.com/tidwall/gjson"
)

const defaultCatalog = "catalog.json"

func main() {
	catalogPath := defaultCatalog
	if len(os.Args) > 1 {
		catalogPath = os.Args[1]
	}

	raw, err := os.ReadFile(filepath.Clean(catalogPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading catalog: %v\n", err)
		os.Exit(1)
	}
	if !gjson.ValidBytes(raw) {
		fmt.Fprintf(os.Stderr, "Error: %s is not valid JSON\n", catalogPath)
		os.Exit(1)
	}

	books, err := library.OpenBookStore(filepath.Join("data", "books"), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book store: %v\n", err)
		os.Exit(1)
	}
	defer books.Close()

	fmt.Printf("Importing books from %s...\n", catalogPath)

	successCount := 0
	errorCount := 0

	gjson.ParseBytes(raw).ForEach(func(_, entry gjson.Result) bool {
		title := entry.Get("title").String()
		author := entry.Get("author").String()
		stock := 1
		if s := entry.Get("stock"); s.Exists() {
			stock = int(s.Int())
		}
		if title == "" || author == "" {
			fmt.Printf("Skipping entry without title/author: %s\n", entry.Raw)
			errorCount++
			return true
		}

		fmt.Printf("Importing: %s by %s... ", title, author)
		b, err := books.Add(title, author, stock)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			errorCount++
			return true
		}
		fmt.Printf("ID %d (%d copies)\n", b.ID, b.Stock)
		successCount++
		return true
	})

	fmt.Printf("\nImport complete: %d added, %d skipped.\n", successCount, errorCount)
	if errorCount > 0 {
		os.Exit(1)
	}
}
