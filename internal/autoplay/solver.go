package autoplay

import (
	"slices"
	"strings"
)

// Solver answers unscramble prompts from a known word list.
type Solver struct {
	byLetters map[string]string
}

func NewSolver(words []string) *Solver {
	s := &Solver{byLetters: make(map[string]string, len(words))}
	for _, w := range words {
		s.byLetters[letterKey(w)] = strings.ToLower(w)
	}
	return s
}

// Solve returns the word scrambled is an anagram of, or "" when unknown.
func (s *Solver) Solve(scrambled string) string {
	return s.byLetters[letterKey(scrambled)]
}

func letterKey(w string) string {
	r := []rune(strings.ToLower(strings.TrimSpace(w)))
	slices.Sort(r)
	return string(r)
}
