package store

import (
	"strings"
	"sync"
	"unicode"
)

// Tokenize lower-cases text and splits it on every rune that is neither a
// letter nor a digit. Empty tokens are dropped.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// idSet is a set of incident ids safe for concurrent use.
type idSet struct {
	mu  sync.RWMutex
	ids map[int]struct{}
}

func (s *idSet) add(id int) {
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()
}

func (s *idSet) snapshot() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// titleIndex maps a title token to the ids of incidents whose title holds it.
// Entries are only ever added.
type titleIndex struct {
	tokens sync.Map // string -> *idSet
}

func (ix *titleIndex) add(id int, title string) {
	for _, tok := range Tokenize(title) {
		set, ok := ix.tokens.Load(tok)
		if !ok {
			set, _ = ix.tokens.LoadOrStore(tok, &idSet{ids: make(map[int]struct{})})
		}
		set.(*idSet).add(id)
	}
}

// lookup returns the ids indexed under token, or nil.
func (ix *titleIndex) lookup(token string) []int {
	set, ok := ix.tokens.Load(token)
	if !ok {
		return nil
	}
	return set.(*idSet).snapshot()
}

func (ix *titleIndex) reset() {
	ix.tokens.Clear()
}
