package main

import (
	"testing"

	"library-desk/library"

	"github.com/stretchr/testify/assert"
)

func TestAccountMatches(t *testing.T) {
	acc := library.NewAccount("BookWorm42", "pw", "Ada", "Lovelace", library.TypeUser)

	assert.True(t, accountMatches(acc, "worm"), "username, any casing")
	assert.True(t, accountMatches(acc, "ADA"), "first name")
	assert.True(t, accountMatches(acc, "lace"), "last name")
	assert.True(t, accountMatches(acc, ""), "empty query matches everything")
	assert.False(t, accountMatches(acc, "zzz"))
}

func TestBookMatches(t *testing.T) {
	b := library.NewBook(1, "The Left Hand of Darkness", "Ursula K. Le Guin", 1)

	assert.True(t, bookMatches(b, "left hand"))
	assert.True(t, bookMatches(b, "LE GUIN"))
	assert.False(t, bookMatches(b, "tolkien"))
}
