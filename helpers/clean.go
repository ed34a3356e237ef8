// Package helpers provides string cleanup and lookup tables shared by the
// field transforms: noise-token removal, casing, HTML stripping, multi-value
// splitting, and the zone, product and party alias tables.
package helpers

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrBadPattern is returned when a cleanup pattern does not compile.
var ErrBadPattern = errors.New("invalid cleanup pattern")

// Casing selects the case applied after cleanup.
type Casing int

const (
	CasingNone Casing = iota
	CasingUpper
	CasingTitle
)

// ParseCasing parses "none", "upper" or "title". The empty string is none.
func ParseCasing(s string) (Casing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CasingNone, nil
	case "upper":
		return CasingUpper, nil
	case "title":
		return CasingTitle, nil
	}
	return CasingNone, fmt.Errorf("unknown casing %q", s)
}

// edgeCutset is trimmed from both ends once noise has been removed.
const edgeCutset = " -/,;:*+|"

// maxPasses bounds the fixpoint loop in Clean.
const maxPasses = 16

// Cleaner removes configured noise from free-text fields. A Cleaner is
// immutable after construction and safe for concurrent use.
type Cleaner struct {
	phrases   [][]string
	patterns  []*regexp.Regexp
	casing    Casing
	stripHTML bool
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithBlacklist removes whole tokens (or runs of tokens, e.g. "TO ORDER")
// wherever they appear. Matching ignores case and surrounding brackets.
func WithBlacklist(tokens ...string) CleanerOption {
	return func(c *Cleaner) {
		for _, tok := range tokens {
			if words := strings.Fields(strings.ToUpper(tok)); len(words) > 0 {
				c.phrases = append(c.phrases, words)
			}
		}
	}
}

// WithPatterns removes every match of the given expressions. Prefix and
// suffix patterns are anchored by the caller (`^M/?[VT]\s+`, `\s+\(.*\)$`).
func WithPatterns(patterns ...*regexp.Regexp) CleanerOption {
	return func(c *Cleaner) {
		c.patterns = append(c.patterns, patterns...)
	}
}

// WithCasing sets the output casing.
func WithCasing(casing Casing) CleanerOption {
	return func(c *Cleaner) {
		c.casing = casing
	}
}

// WithHTML strips markup before cleaning.
func WithHTML() CleanerOption {
	return func(c *Cleaner) {
		c.stripHTML = true
	}
}

// NewCleaner creates a cleaner.
func NewCleaner(opts ...CleanerOption) *Cleaner {
	c := &Cleaner{}
	for _, opt := range opts {
		opt(c)
	}
	// Longest phrases first so "TO ORDER OF" wins over "TO ORDER".
	sort.SliceStable(c.phrases, func(i, j int) bool {
		return len(c.phrases[i]) > len(c.phrases[j])
	})
	return c
}

// CompilePatterns compiles cleanup expressions as written in profiles.
// Matching is case-insensitive.
func CompilePatterns(exprs ...string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrBadPattern, expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Clean applies the configured removals until nothing changes, so that
// Clean(Clean(s)) == Clean(s). Input that matches nothing comes back with
// whitespace collapsed and edges trimmed.
func (c *Cleaner) Clean(s string) string {
	for range maxPasses {
		next := c.pass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func (c *Cleaner) pass(s string) string {
	if c.stripHTML && IsHTML(s) {
		s = StripHTML(s)
	}
	s = NormalizeWhitespace(s)

	for _, re := range c.patterns {
		s = re.ReplaceAllString(s, " ")
	}
	s = NormalizeWhitespace(s)

	if len(c.phrases) > 0 {
		s = c.removePhrases(s)
	}
	s = strings.Trim(s, edgeCutset)

	switch c.casing {
	case CasingUpper:
		s = strings.ToUpper(s)
	case CasingTitle:
		// Casers carry state and are not shared between goroutines.
		s = cases.Title(language.Und).String(s)
	}
	return s
}

func (c *Cleaner) removePhrases(s string) string {
	tokens := strings.Fields(s)
	keys := make([]string, len(tokens))
	for i, tok := range tokens {
		keys[i] = strings.ToUpper(strings.Trim(tok, "()[]{},;"))
	}

	kept := tokens[:0:0]
	for i := 0; i < len(tokens); {
		if n := c.matchPhrase(keys[i:]); n > 0 {
			i += n
			continue
		}
		kept = append(kept, tokens[i])
		i++
	}
	return strings.Join(kept, " ")
}

func (c *Cleaner) matchPhrase(keys []string) int {
	for _, words := range c.phrases {
		if len(words) > len(keys) {
			continue
		}
		matched := true
		for i, w := range words {
			if keys[i] != w {
				matched = false
				break
			}
		}
		if matched {
			return len(words)
		}
	}
	return 0
}

// Split breaks a multi-value cell on any of the separator runes in seps
// ("C4/C3" on "/") and cleans each part. Empty parts are dropped.
func (c *Cleaner) Split(s, seps string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})

	var out []string
	for _, p := range parts {
		if p = c.Clean(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Clean removes blacklisted tokens and prefix/suffix pattern matches from
// text. Patterns that do not compile are ignored.
func Clean(text string, blacklist []string, patterns []string) string {
	var compiled []*regexp.Regexp
	for _, p := range patterns {
		if re, err := CompilePatterns(p); err == nil {
			compiled = append(compiled, re...)
		}
	}
	return NewCleaner(WithBlacklist(blacklist...), WithPatterns(compiled...)).Clean(text)
}
