// Package analysis turns free-form project descriptions into structured
// bills of materials, and decides which turns need that treatment at all.
package analysis

import "strings"

type TurnType int

const (
	// TurnChat is a conversational turn answered directly by the model.
	TurnChat TurnType = iota
	// TurnBuildingAnalysis is a turn describing a project or build that
	// should be routed through the requirements analyzer.
	TurnBuildingAnalysis
)

// buildingKeywords are phrases that mark a message as a project
// description rather than a question. Matching is case-insensitive and
// substring-based; a single hit is enough.
var buildingKeywords = []string{
	"i'm building",
	"i am building",
	"we're building",
	"we are building",
	"i'm constructing",
	"i am constructing",
	"building a",
	"build a",
	"construct a",
	"renovating",
	"renovation",
	"my project",
	"bill of materials",
	"materials list",
	"what do i need to build",
	"what materials",
}

// ClassifyTurn decides how a user message should be handled.
func ClassifyTurn(input string) TurnType {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return TurnChat
	}

	for _, kw := range buildingKeywords {
		if strings.Contains(in, kw) {
			return TurnBuildingAnalysis
		}
	}
	return TurnChat
}
