package library

import (
	"errors"
	"log"
	"sort"
	"strconv"
)

// Business-rule failures for book operations.
var (
	ErrBookNotFound = errors.New("book not found")
	ErrNotBorrowed  = errors.New("book not borrowed by this user")
)

// BorrowLimit is the maximum number of books a user may hold at once,
// counted across all titles.
const BorrowLimit = 5

const bookFileComment = "Book"

// BorrowResult reports the outcome of a borrow attempt. Every expected
// business condition maps to a code; borrowing never fails with an
// error a caller has to unwrap.
type BorrowResult int

const (
	BorrowOK BorrowResult = iota
	BorrowNotAvailable
	BorrowAlreadyBorrowed
	BorrowLimitReached
)

func (r BorrowResult) String() string {
	switch r {
	case BorrowOK:
		return "ok"
	case BorrowNotAvailable:
		return "not available"
	case BorrowAlreadyBorrowed:
		return "already borrowed"
	case BorrowLimitReached:
		return "borrow limit reached"
	default:
		return "unknown"
	}
}

// BookStore owns the id-to-book mapping, backed by one file per book.
// It enforces stock non-negativity, the per-user borrow limit, and
// borrow/return consistency. It never consults the account store: a
// borrower is just a username string.
type BookStore struct {
	files  recordDir
	byID   map[int]Book
	logger *log.Logger
}

// OpenBookStore loads every book file in dir into memory, creating the
// directory first if needed. A nil logger falls back to stderr.
func OpenBookStore(dir string, logger *log.Logger) (*BookStore, error) {
	logger = ensureLogger(logger)
	files, err := newRecordDir(dir, logger)
	if err != nil {
		return nil, err
	}
	s := &BookStore{
		files:  files,
		byID:   make(map[int]Book),
		logger: logger,
	}
	err = files.loadAll(func(p map[string]string) {
		b := bookFromProps(p)
		s.byID[b.ID] = b
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the store. Records are written through on every
// mutation, so there is nothing to flush.
func (s *BookStore) Close() error { return nil }

// ListAll returns a snapshot of every book, sorted by id.
func (s *BookStore) ListAll() []Book {
	out := make([]Book, 0, len(s.byID))
	for _, b := range s.byID {
		out = append(out, b.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListAvailable returns only the books with at least one copy left.
func (s *BookStore) ListAvailable() []Book {
	out := make([]Book, 0, len(s.byID))
	for _, b := range s.byID {
		if b.Available() {
			out = append(out, b.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListBorrowedBy returns the books currently held by the given user.
func (s *BookStore) ListBorrowedBy(username string) []Book {
	u := canonical(username)
	out := make([]Book, 0)
	for _, b := range s.byID {
		if _, ok := b.Borrowers[u]; ok {
			out = append(out, b.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CountBorrowedBy counts how many books the user holds across all
// titles.
func (s *BookStore) CountBorrowedBy(username string) int {
	u := canonical(username)
	n := 0
	for _, b := range s.byID {
		if _, ok := b.Borrowers[u]; ok {
			n++
		}
	}
	return n
}

// Find looks up a book by id.
func (s *BookStore) Find(id int) (Book, bool) {
	b, ok := s.byID[id]
	if !ok {
		return Book{}, false
	}
	return b.clone(), true
}

// nextID computes the next book id as the current maximum plus one.
// Deleting the highest-numbered book frees its id for the next Add;
// ids are only stable while the book exists.
func (s *BookStore) nextID() int {
	maxID := 0
	for id := range s.byID {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// Add creates a new book with a freshly assigned id and a non-negative
// stock. The record is written to disk before it enters the cache.
func (s *BookStore) Add(title, author string, stock int) (Book, error) {
	b := NewBook(s.nextID(), title, author, stock)
	if err := s.files.write(strconv.Itoa(b.ID), bookFileComment, b.toProps()); err != nil {
		return Book{}, err
	}
	s.byID[b.ID] = b
	return b.clone(), nil
}

// Remove deletes a book's backing file and then drops it from the
// cache. A failed file delete leaves the book in place, so the record
// cannot resurface from disk at the next open. Removing an unknown id
// reports ErrBookNotFound, and removing the same id twice is safe.
func (s *BookStore) Remove(id int) error {
	if _, ok := s.byID[id]; !ok {
		return ErrBookNotFound
	}
	if err := s.files.delete(strconv.Itoa(id)); err != nil {
		return err
	}
	delete(s.byID, id)
	return nil
}

// SetStock overwrites a book's stock with a non-negative value and
// persists it. The cache keeps the old stock when the write fails.
func (s *BookStore) SetStock(id, newStock int) error {
	b, ok := s.byID[id]
	if !ok {
		return ErrBookNotFound
	}
	updated := b.clone()
	updated.Stock = max(0, newStock)
	if err := s.files.write(strconv.Itoa(id), bookFileComment, updated.toProps()); err != nil {
		return err
	}
	s.byID[id] = updated
	return nil
}

// Borrow lends one copy of a book to the user. The checks run in a
// strict order that decides which message the user sees when several
// conditions overlap: availability first, then double-borrow, then the
// borrow limit. A book with no stock reports BorrowNotAvailable even
// to a user already at their limit.
//
// The in-memory record is updated before the file write, and a failed
// write is reported as BorrowNotAvailable without rolling the cache
// back; cache and disk stay out of step until the next successful
// save. Long-standing behavior, kept deliberately.
func (s *BookStore) Borrow(id int, username string) BorrowResult {
	u := canonical(username)
	b, ok := s.byID[id]
	if !ok || !b.Available() {
		return BorrowNotAvailable
	}
	if _, has := b.Borrowers[u]; has {
		return BorrowAlreadyBorrowed
	}
	if s.CountBorrowedBy(u) >= BorrowLimit {
		return BorrowLimitReached
	}

	b.Stock = max(0, b.Stock-1)
	b.Borrowers[u] = nowISO()
	s.byID[id] = b
	if err := s.files.write(strconv.Itoa(id), bookFileComment, b.toProps()); err != nil {
		return BorrowNotAvailable
	}
	return BorrowOK
}

// Return takes a copy back from the user: the user leaves the borrower
// set and the stock goes up by one. Stock is never capped on return;
// the store tracks current availability, not a total owned count. The
// cache is only updated once the record is safely on disk.
func (s *BookStore) Return(id int, username string) error {
	u := canonical(username)
	b, ok := s.byID[id]
	if !ok {
		return ErrBookNotFound
	}
	if _, has := b.Borrowers[u]; !has {
		return ErrNotBorrowed
	}
	updated := b.clone()
	delete(updated.Borrowers, u)
	updated.Stock++
	if err := s.files.write(strconv.Itoa(id), bookFileComment, updated.toProps()); err != nil {
		return err
	}
	s.byID[id] = updated
	return nil
}
