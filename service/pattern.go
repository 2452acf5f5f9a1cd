package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"portfolio-bot/model"
	"portfolio-bot/utils"
)

type RuleKind string

const (
	RuleRegex       RuleKind = "regex"
	RuleLiteral     RuleKind = "literal"
	RuleAlternation RuleKind = "alternation"
)

// MatchRule is one compiled pattern of a category. Specificity is the score
// an exact hit contributes; longer rules outrank shorter ones regardless of
// how the rule is evaluated.
type MatchRule interface {
	Kind() RuleKind
	Source() string
	Match(message string) bool
	Specificity() int
	Keywords() []string
}

func CompileRule(spec model.PatternSpec) (MatchRule, error) {
	switch {
	case spec.Regex != "":
		re, err := regexp.Compile("(?i)" + spec.Regex)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", spec.Regex, err)
		}
		return &regexRule{source: spec.Regex, re: re}, nil
	case spec.Literal != "":
		return &literalRule{text: spec.Literal, lower: strings.ToLower(spec.Literal)}, nil
	case len(spec.Any) > 0:
		alts := make([]string, 0, len(spec.Any))
		for _, a := range spec.Any {
			if a == "" {
				return nil, fmt.Errorf("empty alternative in %v", spec.Any)
			}
			alts = append(alts, strings.ToLower(a))
		}
		return &alternationRule{alts: alts}, nil
	default:
		return nil, fmt.Errorf("empty pattern")
	}
}

type regexRule struct {
	source string
	re     *regexp.Regexp
}

func (r *regexRule) Kind() RuleKind            { return RuleRegex }
func (r *regexRule) Source() string            { return r.source }
func (r *regexRule) Match(message string) bool { return r.re.MatchString(message) }
func (r *regexRule) Specificity() int          { return utils.RuneLen(r.source) }

func (r *regexRule) Keywords() []string {
	return splitKeywords(escapeSequence.ReplaceAllString(r.source, " "))
}

type literalRule struct {
	text  string
	lower string
}

func (r *literalRule) Kind() RuleKind { return RuleLiteral }
func (r *literalRule) Source() string { return r.text }

func (r *literalRule) Match(message string) bool {
	return strings.Contains(strings.ToLower(message), r.lower)
}

func (r *literalRule) Specificity() int { return utils.RuneLen(r.text) }

func (r *literalRule) Keywords() []string {
	if kw := cleanKeyword(r.text); kw != "" {
		return []string{kw}
	}
	return nil
}

type alternationRule struct {
	alts []string
}

func (r *alternationRule) Kind() RuleKind { return RuleAlternation }

// Source renders the rule as the equivalent regex group, which also fixes
// its specificity.
func (r *alternationRule) Source() string {
	return "(" + strings.Join(r.alts, "|") + ")"
}

func (r *alternationRule) Match(message string) bool {
	lower := strings.ToLower(message)
	for _, a := range r.alts {
		if strings.Contains(lower, a) {
			return true
		}
	}
	return false
}

func (r *alternationRule) Specificity() int { return utils.RuneLen(r.Source()) }

func (r *alternationRule) Keywords() []string {
	return splitKeywords(strings.Join(r.alts, "|"))
}

var escapeSequence = regexp.MustCompile(`\\.`)

// splitKeywords turns a pattern body into bare keywords: alternation
// branches with everything but letters and spaces removed.
func splitKeywords(body string) []string {
	var out []string
	for _, part := range strings.Split(body, "|") {
		if kw := cleanKeyword(part); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func cleanKeyword(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
