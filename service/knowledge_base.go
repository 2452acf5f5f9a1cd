package service

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"portfolio-bot/model"
	"portfolio-bot/utils"
)

var ErrInvalidKnowledge = errors.New("invalid knowledge base")

const (
	defaultFuzzyThreshold   = 10
	defaultSimilarityCutoff = 0.75
	defaultFollowupGate     = 0.6
	defaultFollowupMaxDepth = 3
	defaultPersonalizeGate  = 0.7
	defaultEmptyPrompt      = "I didn't catch that. What would you like to know?"
)

// Category is a compiled knowledge entry.
type Category struct {
	Name      string
	Rules     []MatchRule
	Keywords  []string
	Responses []string
	Followups []string
	Details   []model.DetailEntry
}

// Detail returns the text of the first detail key contained in lowerMessage.
func (c *Category) Detail(lowerMessage string) (string, string, bool) {
	for _, d := range c.Details {
		if strings.Contains(lowerMessage, strings.ToLower(d.Key)) {
			return d.Key, d.Text, true
		}
	}
	return "", "", false
}

// KnowledgeBase is an immutable, compiled snapshot of the knowledge YAML.
type KnowledgeBase struct {
	categories  []*Category
	index       map[string]*Category
	normalizer  *utils.Normalizer
	fallbacks   []string
	emptyPrompt string
	matching    model.MatchingConfig
	generation  model.GenerationConfig
	projects    []model.Project
	source      string
	loadedAt    time.Time
}

func LoadKnowledgeFile(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	return ParseKnowledge(data, path)
}

func ParseKnowledge(data []byte, source string) (*KnowledgeBase, error) {
	var cfg model.KnowledgeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidKnowledge, source, err)
	}
	kb, err := NewKnowledgeBase(&cfg)
	if err != nil {
		return nil, err
	}
	kb.source = source
	return kb, nil
}

// NewKnowledgeBase validates cfg, compiles every rule and builds the fuzzy
// keyword index once.
func NewKnowledgeBase(cfg *model.KnowledgeConfig) (*KnowledgeBase, error) {
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidKnowledge)
	}
	if len(cfg.Fallbacks) == 0 {
		return nil, fmt.Errorf("%w: no fallback replies", ErrInvalidKnowledge)
	}
	if err := utils.ValidateTypos(cfg.Typos); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKnowledge, err)
	}

	kb := &KnowledgeBase{
		index:       make(map[string]*Category, len(cfg.Categories)),
		normalizer:  utils.NewNormalizer(cfg.Typos),
		fallbacks:   append([]string(nil), cfg.Fallbacks...),
		emptyPrompt: cfg.EmptyPrompt,
		matching:    cfg.Matching,
		generation:  cfg.Generation,
		projects:    append([]model.Project(nil), cfg.Projects...),
		source:      "inline",
		loadedAt:    time.Now(),
	}
	kb.applyDefaults()

	for i := range cfg.Categories {
		c, err := compileCategory(&cfg.Categories[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKnowledge, err)
		}
		if _, dup := kb.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidKnowledge, c.Name)
		}
		kb.categories = append(kb.categories, c)
		kb.index[c.Name] = c
	}

	return kb, nil
}

func (kb *KnowledgeBase) applyDefaults() {
	if kb.matching.FuzzyThreshold == 0 {
		kb.matching.FuzzyThreshold = defaultFuzzyThreshold
	}
	if kb.matching.SimilarityCutoff == 0 {
		kb.matching.SimilarityCutoff = defaultSimilarityCutoff
	}
	if kb.generation.FollowupGate == 0 {
		kb.generation.FollowupGate = defaultFollowupGate
	}
	if kb.generation.FollowupMaxDepth == 0 {
		kb.generation.FollowupMaxDepth = defaultFollowupMaxDepth
	}
	if kb.generation.PersonalizeGate == 0 {
		kb.generation.PersonalizeGate = defaultPersonalizeGate
	}
	if kb.emptyPrompt == "" {
		kb.emptyPrompt = defaultEmptyPrompt
	}
}

func compileCategory(e *model.KnowledgeEntry) (*Category, error) {
	if e.Category == "" {
		return nil, errors.New("category without a name")
	}
	if len(e.Responses) == 0 {
		return nil, fmt.Errorf("category %q has no responses", e.Category)
	}
	if len(e.Patterns) == 0 {
		return nil, fmt.Errorf("category %q has no patterns", e.Category)
	}

	c := &Category{
		Name:      e.Category,
		Responses: append([]string(nil), e.Responses...),
		Followups: append([]string(nil), e.Followups...),
	}

	seen := make(map[string]bool)
	for _, p := range e.Patterns {
		rule, err := CompileRule(p)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", e.Category, err)
		}
		c.Rules = append(c.Rules, rule)
		for _, kw := range rule.Keywords() {
			if !seen[kw] {
				seen[kw] = true
				c.Keywords = append(c.Keywords, kw)
			}
		}
	}

	keys := make(map[string]bool)
	for _, d := range e.Details {
		if d.Key == "" || d.Text == "" {
			return nil, fmt.Errorf("category %q has an empty detail", e.Category)
		}
		if keys[d.Key] {
			return nil, fmt.Errorf("category %q has duplicate detail %q", e.Category, d.Key)
		}
		keys[d.Key] = true
		c.Details = append(c.Details, d)
	}

	return c, nil
}

func (kb *KnowledgeBase) Category(name string) (*Category, bool) {
	c, ok := kb.index[name]
	return c, ok
}

// Categories returns the categories in file order, which is also the
// tie-break order of the matcher.
func (kb *KnowledgeBase) Categories() []*Category { return kb.categories }

func (kb *KnowledgeBase) Normalizer() *utils.Normalizer      { return kb.normalizer }
func (kb *KnowledgeBase) Fallbacks() []string                { return kb.fallbacks }
func (kb *KnowledgeBase) EmptyPrompt() string                { return kb.emptyPrompt }
func (kb *KnowledgeBase) Matching() model.MatchingConfig     { return kb.matching }
func (kb *KnowledgeBase) Generation() model.GenerationConfig { return kb.generation }
func (kb *KnowledgeBase) Projects() []model.Project          { return kb.projects }
func (kb *KnowledgeBase) Source() string                     { return kb.source }
func (kb *KnowledgeBase) LoadedAt() time.Time                { return kb.loadedAt }

func (kb *KnowledgeBase) Summaries() []model.KnowledgeSummary {
	out := make([]model.KnowledgeSummary, 0, len(kb.categories))
	for _, c := range kb.categories {
		out = append(out, model.KnowledgeSummary{
			Category:  c.Name,
			Patterns:  len(c.Rules),
			Keywords:  len(c.Keywords),
			Responses: len(c.Responses),
			Followups: len(c.Followups),
			Details:   len(c.Details),
		})
	}
	return out
}
