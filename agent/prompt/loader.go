package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/decider.txt
	deciderRaw string

	//go:embed template/phraser.txt
	phraserRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Decider string
	Phraser string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings. Safe to
// call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Decider: strings.TrimSpace(deciderRaw),
		Phraser: strings.TrimSpace(phraserRaw),
	}
}
