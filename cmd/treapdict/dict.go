// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/kvset/treap"
)

// keypadDigits maps each lowercase letter to the digit that carries it on a
// phone keypad.
var keypadDigits = [26]byte{
	'2', '2', '2', // abc
	'3', '3', '3', // def
	'4', '4', '4', // ghi
	'5', '5', '5', // jkl
	'6', '6', '6', // mno
	'7', '7', '7', '7', // pqrs
	'8', '8', '8', // tuv
	'9', '9', '9', '9', // wxyz
}

// digitString converts a lowercase word to the digit string typed to spell
// it on a phone keypad.  The word must consist only of the letters a-z.
func digitString(word string) string {
	var sb strings.Builder
	sb.Grow(len(word))
	for i := 0; i < len(word); i++ {
		sb.WriteByte(keypadDigits[word[i]-'a'])
	}
	return sb.String()
}

// indexEntry is a dictionary word keyed by the digit string that spells it.
type indexEntry struct {
	digits string
	word   string
}

// compareIndexEntries orders entries by digit string and then by word, so
// the words sharing a digit string are contiguous and alphabetical.
func compareIndexEntries(a, b indexEntry) int {
	if c := strings.Compare(a.digits, b.digits); c != 0 {
		return c
	}
	return strings.Compare(a.word, b.word)
}

// dictionary indexes a wordlist by keypad digit string for reverse lookup.
type dictionary struct {
	entries *treap.Set[indexEntry]
}

func newDictionary() *dictionary {
	return &dictionary{entries: treap.NewFunc(compareIndexEntries)}
}

// addWord indexes word under the digit string that spells it.  Indexing the
// same word again is a no-op.
func (d *dictionary) addWord(word string) {
	d.entries.Insert(indexEntry{digits: digitString(word), word: word})
}

// lookup returns the words spelled by typing query.  When extensions is
// true it also returns every word whose digit string merely starts with
// query.  Words are ordered by digit string and then alphabetically.
func (d *dictionary) lookup(query string, extensions bool) []string {
	var words []string
	it := d.entries.LowerBound(indexEntry{digits: query})
	for ; it.Valid(); it = it.Next() {
		e := it.Item()
		if extensions {
			if !strings.HasPrefix(e.digits, query) {
				break
			}
		} else if e.digits != query {
			break
		}
		words = append(words, e.word)
	}
	return words
}

// isLowerWord reports whether s is a nonempty string of the letters a-z.
func isLowerWord(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// isDigitQuery reports whether s is a nonempty string of the digits 0-9.
func isDigitQuery(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
