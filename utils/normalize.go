package utils

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// LookupKey folds a token to the form used as a typo-map key:
// unicode-decomposed, lowercased, and reduced to [a-z0-9].
func LookupKey(token string) string {
	token = strings.ToLower(norm.NFKD.String(token))

	var b strings.Builder
	b.Grow(len(token))
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Normalizer corrects known misspellings token by token.
type Normalizer struct {
	typos map[string]string
}

func NewNormalizer(typos map[string]string) *Normalizer {
	m := make(map[string]string, len(typos))
	for k, v := range typos {
		m[k] = v
	}
	return &Normalizer{typos: m}
}

// Normalize replaces every whitespace-delimited token whose lookup key is a
// known typo with its correction and rejoins with single spaces. Tokens that
// are not corrected keep their original casing and punctuation.
func (n *Normalizer) Normalize(raw string) string {
	words := strings.Fields(raw)
	for i, w := range words {
		if fixed, ok := n.typos[LookupKey(w)]; ok {
			words[i] = fixed
		}
	}
	return strings.Join(words, " ")
}

func (n *Normalizer) Len() int {
	return len(n.typos)
}

// ValidateTypos checks that a typo map keeps Normalize idempotent: keys and
// corrections must already be lookup keys, and a correction that is itself
// a key must map to itself.
func ValidateTypos(typos map[string]string) error {
	keys := make([]string, 0, len(typos))
	for k := range typos {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := typos[k]
		if k == "" || LookupKey(k) != k {
			return fmt.Errorf("typo key %q is not a lowercase [a-z0-9] token", k)
		}
		if v == "" || LookupKey(v) != v {
			return fmt.Errorf("correction %q for %q is not a lowercase [a-z0-9] token", v, k)
		}
		if next, ok := typos[v]; ok && next != v {
			return fmt.Errorf("correction %q for %q is itself corrected to %q", v, k, next)
		}
	}
	return nil
}
