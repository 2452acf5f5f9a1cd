package config

import _ "embed"

// DefaultKnowledge is the knowledge base compiled into the binary.
//
//go:embed knowledge.yaml
var DefaultKnowledge []byte
