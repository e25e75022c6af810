package library

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRoundTrip(t *testing.T) {
	acc := Account{
		Username:    "Alice",
		Password:    "s3cret",
		FirstName:   "Alice",
		LastName:    "Smith",
		Type:        TypeUser,
		CreatedAt:   "2025-08-29T10:45:00",
		LastLoginAt: "2025-08-30T09:00:00",
	}

	var buf bytes.Buffer
	require.NoError(t, encodeProps(&buf, accountFileComment, acc.toProps()))

	p, err := decodeProps(&buf)
	require.NoError(t, err)
	assert.Equal(t, acc, accountFromProps(p))
}

func TestAccountOptionalLastLoginOmitted(t *testing.T) {
	acc := NewAccount("bob", "pw", "Bob", "Jones", "")

	var buf bytes.Buffer
	require.NoError(t, encodeProps(&buf, accountFileComment, acc.toProps()))
	assert.NotContains(t, buf.String(), "lastLoginAt")

	p, err := decodeProps(&buf)
	require.NoError(t, err)
	got := accountFromProps(p)
	assert.Empty(t, got.LastLoginAt)
	assert.Equal(t, TypeUser, got.Type, "type should default to user")
}

func TestBookRoundTrip(t *testing.T) {
	b := NewBook(7, "The Two Towers", "J.R.R. Tolkien", 3)
	b.Borrowers["alice"] = "2025-08-29T10:45:00"
	b.Borrowers["bob"] = "" // borrower without a recorded timestamp

	var buf bytes.Buffer
	require.NoError(t, encodeProps(&buf, bookFileComment, b.toProps()))

	text := buf.String()
	assert.Contains(t, text, "borrowers=alice,bob")
	assert.Contains(t, text, "borrowedAt.alice=2025-08-29T10:45:00")
	assert.NotContains(t, text, "borrowedAt.bob")

	p, err := decodeProps(&buf)
	require.NoError(t, err)
	assert.Equal(t, b, bookFromProps(p))
}

func TestBookEmptyBorrowersOmitted(t *testing.T) {
	b := NewBook(1, "1984", "George Orwell", 2)

	var buf bytes.Buffer
	require.NoError(t, encodeProps(&buf, bookFileComment, b.toProps()))
	assert.NotContains(t, buf.String(), "borrowers")

	p, err := decodeProps(&buf)
	require.NoError(t, err)
	got := bookFromProps(p)
	assert.Empty(t, got.Borrowers)
	assert.Equal(t, 2, got.Stock)
}

func TestBookLegacyAvailableFallback(t *testing.T) {
	base := map[string]string{"id": "4", "title": "T", "author": "A"}

	tests := []struct {
		name      string
		available string // "" means key absent
		wantStock int
	}{
		{"available true means one copy", "true", 1},
		{"available false means none", "false", 0},
		{"missing available defaults to one copy", "", 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := map[string]string{}
			for k, v := range base {
				p[k] = v
			}
			if tc.available != "" {
				p["available"] = tc.available
			}
			assert.Equal(t, tc.wantStock, bookFromProps(p).Stock)
		})
	}
}

func TestMalformedIntFieldsFailSoft(t *testing.T) {
	b := bookFromProps(map[string]string{
		"id":    "not-a-number",
		"title": "T",
		"stock": "also-not-a-number",
	})
	assert.Equal(t, 0, b.ID)
	assert.Equal(t, 1, b.Stock, "malformed stock falls back to one copy")
}

func TestDecodeSkipsCommentsAndJunk(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		"# Library Account",
		"! another comment style",
		"",
		"username=carol",
		"line without a separator",
		"password=pw=with=equals",
	}, "\n"))

	p, err := decodeProps(in)
	require.NoError(t, err)
	assert.Equal(t, "carol", p["username"])
	assert.Equal(t, "pw=with=equals", p["password"], "value keeps everything after the first =")
	assert.Len(t, p, 2)
}

func TestEncodeIsDeterministic(t *testing.T) {
	b := NewBook(2, "Animal Farm", "George Orwell", 1)
	b.Borrowers["zoe"] = "2025-01-01T00:00:00"
	b.Borrowers["adam"] = "2025-01-02T00:00:00"

	var first, second bytes.Buffer
	require.NoError(t, encodeProps(&first, bookFileComment, b.toProps()))
	require.NoError(t, encodeProps(&second, bookFileComment, b.toProps()))
	assert.Equal(t, first.String(), second.String())
}
