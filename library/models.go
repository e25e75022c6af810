package library

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Account types. Anything other than admin is treated as a regular user.
const (
	TypeAdmin = "admin"
	TypeUser  = "user"
)

// timeLayout is the timestamp format used in record files,
// e.g. 2025-08-29T10:45:00.
const timeLayout = "2006-01-02T15:04:05"

// nowISO returns the current local time formatted for record files.
func nowISO() string { return time.Now().Format(timeLayout) }

// canonical lowercases a username. The lowercase form is the unique
// lookup key and the basis of the record's filename; the original
// casing is kept on the record itself for display.
func canonical(username string) string { return strings.ToLower(username) }

// isAdminType reports whether the given type text means admin
// (case-insensitive).
func isAdminType(t string) bool { return strings.EqualFold(t, TypeAdmin) }

// Account is an identity and credential record. Passwords are stored
// and compared as plain text; this is a simulation, not a vault.
type Account struct {
	Username    string
	Password    string
	FirstName   string
	LastName    string
	Type        string // "admin" or "user"
	CreatedAt   string // set once at creation
	LastLoginAt string // empty until the first successful sign-in
}

// NewAccount builds an account, defaulting the type to user and the
// creation time to now when they are missing.
func NewAccount(username, password, first, last, accType string) Account {
	if accType == "" {
		accType = TypeUser
	}
	return Account{
		Username:  username,
		Password:  password,
		FirstName: first,
		LastName:  last,
		Type:      strings.ToLower(accType),
		CreatedAt: nowISO(),
	}
}

// IsAdmin reports whether the account has the admin type.
func (a Account) IsAdmin() bool { return isAdminType(a.Type) }

// key returns the canonical map/filename key for this account.
func (a Account) key() string { return canonical(a.Username) }

func (a Account) toProps() map[string]string {
	p := map[string]string{
		"username":  a.Username,
		"password":  a.Password,
		"firstName": a.FirstName,
		"lastName":  a.LastName,
		"type":      a.Type,
		"createdAt": a.CreatedAt,
	}
	if a.LastLoginAt != "" {
		p["lastLoginAt"] = a.LastLoginAt
	}
	return p
}

// accountFromProps rebuilds an account from a decoded record file,
// filling documented defaults for anything missing.
func accountFromProps(p map[string]string) Account {
	accType := strings.ToLower(p["type"])
	if accType == "" {
		accType = TypeUser
	}
	createdAt := p["createdAt"]
	if createdAt == "" {
		createdAt = nowISO()
	}
	return Account{
		Username:    strings.TrimSpace(p["username"]),
		Password:    p["password"],
		FirstName:   p["firstName"],
		LastName:    p["lastName"],
		Type:        accType,
		CreatedAt:   createdAt,
		LastLoginAt: p["lastLoginAt"],
	}
}

// Book is a catalog and borrowing-state record. Borrowers maps the
// canonical username of everyone currently holding a copy to the
// timestamp they borrowed it; an empty timestamp is tolerated for
// records written before timestamps were tracked.
type Book struct {
	ID        int
	Title     string
	Author    string
	Stock     int // copies currently available, never negative
	Borrowers map[string]string
}

// NewBook builds a book with a non-negative stock and no borrowers.
func NewBook(id int, title, author string, stock int) Book {
	return Book{
		ID:        id,
		Title:     title,
		Author:    author,
		Stock:     max(0, stock),
		Borrowers: make(map[string]string),
	}
}

// Available reports whether at least one copy can be borrowed.
func (b Book) Available() bool { return b.Stock > 0 }

// clone returns a deep copy so callers never hold a live reference
// into a store's cache.
func (b Book) clone() Book {
	c := b
	c.Borrowers = make(map[string]string, len(b.Borrowers))
	for u, at := range b.Borrowers {
		c.Borrowers[u] = at
	}
	return c
}

func (b Book) toProps() map[string]string {
	p := map[string]string{
		"id":     strconv.Itoa(b.ID),
		"title":  b.Title,
		"author": b.Author,
		"stock":  strconv.Itoa(b.Stock),
		// kept for readers that predate stock counts
		"available": strconv.FormatBool(b.Available()),
	}
	if len(b.Borrowers) > 0 {
		users := make([]string, 0, len(b.Borrowers))
		for u := range b.Borrowers {
			users = append(users, u)
		}
		sort.Strings(users)
		p["borrowers"] = strings.Join(users, ",")
		for _, u := range users {
			if at := b.Borrowers[u]; at != "" {
				p["borrowedAt."+u] = at
			}
		}
	}
	return p
}

// bookFromProps rebuilds a book from a decoded record file. A missing
// stock count falls back to the legacy available flag (one copy when
// true, none when false); malformed numbers fall back to defaults
// rather than failing the load.
func bookFromProps(p map[string]string) Book {
	b := Book{
		ID:        parseIntOr(p["id"], 0),
		Title:     p["title"],
		Author:    p["author"],
		Borrowers: make(map[string]string),
	}
	if stockStr, ok := p["stock"]; ok {
		b.Stock = max(0, parseIntOr(stockStr, 1))
	} else {
		available := true
		if avStr, ok := p["available"]; ok {
			available = avStr == "true"
		}
		if available {
			b.Stock = 1
		}
	}
	for _, raw := range strings.Split(p["borrowers"], ",") {
		u := canonical(strings.TrimSpace(raw))
		if u == "" {
			continue
		}
		b.Borrowers[u] = p["borrowedAt."+u]
	}
	return b
}
