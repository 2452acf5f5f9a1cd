package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// KnowledgeConfig is the root of the knowledge YAML document.
type KnowledgeConfig struct {
	Matching    MatchingConfig    `yaml:"matching"`
	Generation  GenerationConfig  `yaml:"generation"`
	EmptyPrompt string            `yaml:"empty_prompt"`
	Fallbacks   []string          `yaml:"fallbacks"`
	Typos       map[string]string `yaml:"typos"`
	Categories  []KnowledgeEntry  `yaml:"categories"`
	Projects    []Project         `yaml:"projects"`
}

type MatchingConfig struct {
	// Fuzzy keyword matching also runs when the best exact score is below this.
	FuzzyThreshold   float64 `yaml:"fuzzy_threshold"`
	SimilarityCutoff float64 `yaml:"similarity_cutoff"`
}

type GenerationConfig struct {
	FollowupGate     float64 `yaml:"followup_gate"`
	FollowupMaxDepth int     `yaml:"followup_max_depth"`
	PersonalizeGate  float64 `yaml:"personalize_gate"`
}

type KnowledgeEntry struct {
	Category  string        `yaml:"category"`
	Patterns  []PatternSpec `yaml:"patterns"`
	Responses []string      `yaml:"responses"`
	Followups []string      `yaml:"followups,omitempty"`
	Details   []DetailEntry `yaml:"details,omitempty"`
}

// DetailEntry keeps details as an ordered list; lookup scans keys in file order.
type DetailEntry struct {
	Key  string `yaml:"key"`
	Text string `yaml:"text"`
}

// PatternSpec is one match rule as written in YAML:
//
//	- 'who\s+(is|are)\s+you'   # regex
//	- literal: "get in touch"
//	- any: [thank, thanks, thx]
type PatternSpec struct {
	Regex   string   `yaml:"regex,omitempty"`
	Literal string   `yaml:"literal,omitempty"`
	Any     []string `yaml:"any,omitempty"`
}

func (p *PatternSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Regex = value.Value
		return nil
	}

	type plain PatternSpec
	var raw plain
	if err := value.Decode(&raw); err != nil {
		return err
	}

	set := 0
	if raw.Regex != "" {
		set++
	}
	if raw.Literal != "" {
		set++
	}
	if len(raw.Any) > 0 {
		set++
	}
	if set != 1 {
		return fmt.Errorf("line %d: pattern must set exactly one of regex, literal, any", value.Line)
	}

	*p = PatternSpec(raw)
	return nil
}
