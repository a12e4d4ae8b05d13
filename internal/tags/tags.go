// Package tags maps a section name and in-page question number to a
// subject tag. Resolution is best-effort: unknown sections and missing
// numbers yield an empty tag, never an error.
package tags

import "strings"

// Subject tags attached to exported records.
const (
	TagMath      = "MATH"
	TagReasoning = "REASONING"
	TagEnglish   = "ENG"
	TagGK        = "GK"
	TagScience   = "SCIENCE"
	TagComputer  = "COMPUTER"
)

// Combined sections split their question range across two subjects.
const (
	sectionReasoningGK = "General Intelligence and General Awareness"
	sectionMathEnglish = "Quantitative Aptitude and English Comprehension"
)

// keywordRule maps any-of keywords to a tag. Rules are checked in order;
// order matters because keyword sets can overlap (e.g. "Quantitative
// Reasoning" should resolve to MATH, not REASONING).
type keywordRule struct {
	keywords []string
	tag      string
}

var keywordRules = []keywordRule{
	{[]string{"quant", "math", "numer", "arith"}, TagMath},
	{[]string{"reason", "intelligence", "mental"}, TagReasoning},
	{[]string{"english", "comprehension", "grammar"}, TagEnglish},
	{[]string{"awareness", "knowledge", "current affairs"}, TagGK},
	{[]string{"science"}, TagScience},
	{[]string{"computer"}, TagComputer},
}

// Resolve returns the subject tag for the given section name and question
// number, or "" when nothing matches. number <= 0 means "unknown".
func Resolve(section string, number int) string {
	section = strings.TrimSpace(section)
	if section == "" {
		return ""
	}

	switch section {
	case sectionReasoningGK:
		switch {
		case number >= 1 && number <= 30:
			return TagReasoning
		case number >= 31 && number <= 60:
			return TagGK
		}
	case sectionMathEnglish:
		switch {
		case number >= 1 && number <= 45:
			return TagMath
		case number >= 46 && number <= 70:
			return TagEnglish
		}
	}

	lower := strings.ToLower(section)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.tag
			}
		}
	}
	return ""
}
