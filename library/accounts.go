package library

import (
	"errors"
	"log"
	"os"
	"sort"
)

// Business-rule failures for account operations. Callers branch with
// errors.Is; anything else coming out of a store method is an I/O
// error from the backing directory.
var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrAccountNotFound = errors.New("account not found")
	ErrWrongPassword   = errors.New("wrong password")
)

const accountFileComment = "Library Account"

// AccountStore owns the username-to-account mapping. All records live
// in memory, backed by one file per account; every successful mutation
// writes the record through to disk before the cache is updated.
type AccountStore struct {
	files      recordDir
	byUsername map[string]Account // keyed by canonical (lowercase) username
	logger     *log.Logger
}

// OpenAccountStore loads every account file in dir into memory,
// creating the directory first if needed. A store that comes up empty
// is seeded with a default admin and a default user so a fresh
// installation is always usable. A nil logger falls back to stderr.
func OpenAccountStore(dir string, logger *log.Logger) (*AccountStore, error) {
	logger = ensureLogger(logger)
	files, err := newRecordDir(dir, logger)
	if err != nil {
		return nil, err
	}
	s := &AccountStore{
		files:      files,
		byUsername: make(map[string]Account),
		logger:     logger,
	}
	err = files.loadAll(func(p map[string]string) {
		acc := accountFromProps(p)
		if acc.Username == "" {
			return
		}
		s.byUsername[acc.key()] = acc
	})
	if err != nil {
		return nil, err
	}
	s.seedIfEmpty()
	return s, nil
}

// Close releases the store. Records are written through on every
// mutation, so there is nothing to flush.
func (s *AccountStore) Close() error { return nil }

// seedIfEmpty creates the two default accounts when no account files
// exist yet.
func (s *AccountStore) seedIfEmpty() {
	if len(s.byUsername) > 0 {
		return
	}
	if err := s.Create("admin", "admin123", "Default", "Admin", TypeAdmin); err != nil {
		s.logger.Printf("seeding default admin: %v", err)
	}
	if err := s.Create("user", "user123", "Regular", "User", TypeUser); err != nil {
		s.logger.Printf("seeding default user: %v", err)
	}
}

// ListAll returns a snapshot of every account, sorted by canonical
// username for stable listings.
func (s *AccountStore) ListAll() []Account {
	out := make([]Account, 0, len(s.byUsername))
	for _, acc := range s.byUsername {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}

// FindByUsername looks up an account by any casing of its username.
func (s *AccountStore) FindByUsername(username string) (Account, bool) {
	acc, ok := s.byUsername[canonical(username)]
	return acc, ok
}

// Exists reports whether a username is already taken, case-insensitively.
func (s *AccountStore) Exists(username string) bool {
	_, ok := s.byUsername[canonical(username)]
	return ok
}

// Authenticate checks the username and password (exact, case-sensitive
// compare). On a match it stamps the last-login time, saves the
// account, and returns it; an unknown username or a wrong password
// both come back as a plain "no match".
func (s *AccountStore) Authenticate(username, password string) (Account, bool) {
	acc, ok := s.byUsername[canonical(username)]
	if !ok || acc.Password != password {
		return Account{}, false
	}
	acc.LastLoginAt = nowISO()
	s.byUsername[acc.key()] = acc
	if err := s.files.write(acc.key(), accountFileComment, acc.toProps()); err != nil {
		s.logger.Printf("recording last login for %s: %v", acc.Username, err)
	}
	return acc, true
}

// Create adds a new account. The username must not already exist under
// any casing; the record is written to disk before it enters the
// cache, so a failed write leaves the store unchanged.
func (s *AccountStore) Create(username, password, first, last, accType string) error {
	if s.Exists(username) {
		return ErrUsernameTaken
	}
	acc := NewAccount(username, password, first, last, accType)
	if err := s.files.write(acc.key(), accountFileComment, acc.toProps()); err != nil {
		return err
	}
	s.byUsername[acc.key()] = acc
	return nil
}

// Update replaces the account stored under oldUsername, supporting a
// rename. The original creation and last-login times are preserved.
// Renaming onto an existing account fails without touching either
// record; the old backing file is removed only after the new one is
// safely on disk.
func (s *AccountStore) Update(oldUsername, newUsername, password, first, last, accType string) error {
	oldKey := canonical(oldUsername)
	old, ok := s.byUsername[oldKey]
	if !ok {
		return ErrAccountNotFound
	}
	newKey := canonical(newUsername)
	if newKey != oldKey {
		if _, taken := s.byUsername[newKey]; taken {
			return ErrUsernameTaken
		}
	}
	updated := NewAccount(newUsername, password, first, last, accType)
	updated.CreatedAt = old.CreatedAt
	updated.LastLoginAt = old.LastLoginAt
	if err := s.files.write(newKey, accountFileComment, updated.toProps()); err != nil {
		return err
	}
	if newKey != oldKey {
		if err := s.files.delete(oldKey); err != nil {
			s.logger.Printf("removing renamed account file for %s: %v", old.Username, err)
		}
		delete(s.byUsername, oldKey)
	}
	s.byUsername[newKey] = updated
	return nil
}

// ChangePassword verifies the current password and stores the new one,
// keeping every other field of the account as-is.
func (s *AccountStore) ChangePassword(username, currentPassword, newPassword string) error {
	acc, ok := s.byUsername[canonical(username)]
	if !ok {
		return ErrAccountNotFound
	}
	if acc.Password != currentPassword {
		return ErrWrongPassword
	}
	return s.Update(acc.Username, acc.Username, newPassword, acc.FirstName, acc.LastName, acc.Type)
}

// Delete removes an account's backing file and then drops it from the
// cache. A failed file delete leaves the account in place, so cache
// and disk never disagree about which accounts exist. Deleting an
// unknown username reports ErrAccountNotFound.
func (s *AccountStore) Delete(username string) error {
	key := canonical(username)
	if _, ok := s.byUsername[key]; !ok {
		return ErrAccountNotFound
	}
	if err := s.files.delete(key); err != nil {
		return err
	}
	delete(s.byUsername, key)
	return nil
}

// ensureLogger substitutes a stderr logger when the caller passed nil.
func ensureLogger(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}
