package validate

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/quizguard/internal/model"
)

// Checker verifies that a question's answer fits its declared type
type Checker struct {
	pairs map[string]model.TrueFalsePair // by language
	langs []string                       // sorted
}

// NewChecker creates a consistency checker using the rule table's true/false pairs
func NewChecker(rules *model.RuleSet) *Checker {
	c := &Checker{pairs: make(map[string]model.TrueFalsePair)}
	if rules != nil {
		for lang, lr := range rules.Languages {
			if lr.TrueFalse.True == "" || lr.TrueFalse.False == "" {
				continue
			}
			c.pairs[lang] = model.TrueFalsePair{
				True:  strings.ToLower(lr.TrueFalse.True),
				False: strings.ToLower(lr.TrueFalse.False),
			}
			c.langs = append(c.langs, lang)
		}
	}
	if len(c.pairs) == 0 {
		c.pairs["en"] = model.TrueFalsePair{True: "true", False: "false"}
		c.langs = []string{"en"}
	}
	sort.Strings(c.langs)
	return c
}

// Check returns structural and quality issues for q
func (c *Checker) Check(q model.Question) []model.Issue {
	var issues []model.Issue

	if strings.TrimSpace(q.Stem) == "" {
		issues = append(issues, structural("Question stem is empty", "Provide the question text"))
	}

	switch q.Type {
	case model.QuestionTypeMCQ:
		issues = append(issues, c.checkMCQ(q)...)
	case model.QuestionTypeTrueFalse:
		issues = append(issues, c.checkTrueFalse(q)...)
	case model.QuestionTypeFillBlank:
		issues = append(issues, c.checkFillBlank(q)...)
	default:
		issues = append(issues, structural(
			fmt.Sprintf("Unknown question type %q", q.Type),
			"Use one of: mcq, true_false, fill_blank",
		))
	}
	return issues
}

// Verify returns a *model.StructuralError when q is malformed
func (c *Checker) Verify(q model.Question) error {
	var found []model.Issue
	for _, issue := range c.Check(q) {
		if issue.Category == model.IssueStructural {
			found = append(found, issue)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return &model.StructuralError{QuestionID: q.ID, Issues: found}
}

func (c *Checker) checkMCQ(q model.Question) []model.Issue {
	var issues []model.Issue

	if len(q.Options) < 2 {
		issues = append(issues, structural(
			fmt.Sprintf("Multiple choice question needs at least 2 options, got %d", len(q.Options)),
			"Add answer options",
		))
	}

	blank := false
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			blank = true
			issues = append(issues, structural(fmt.Sprintf("Option %d is blank", i+1), "Remove or fill in blank options"))
		}
	}

	answer := strings.TrimSpace(q.Answer)
	found := false
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == answer && answer != "" {
			found = true
			break
		}
	}
	if !found {
		issues = append(issues, structural(
			"Correct answer not found in options",
			"Verify that the correct answer matches one of the provided options",
		))
	}

	if len(q.Options) > 1 && !blank && inconsistentOptions(q.Options) {
		issues = append(issues, model.Issue{
			Category:   model.IssueQuality,
			Message:    "Options appear inconsistent or confusing",
			Suggestion: "Make the options distinct and of similar length",
		})
	}
	return issues
}

func (c *Checker) checkTrueFalse(q model.Question) []model.Issue {
	answer := strings.ToLower(strings.TrimSpace(q.Answer))

	pairs := c.langs
	if _, ok := c.pairs[q.Language]; ok {
		pairs = []string{q.Language}
	}

	var accepted []string
	for _, lang := range pairs {
		p := c.pairs[lang]
		if answer == p.True || answer == p.False {
			return nil
		}
		accepted = append(accepted, p.True+"/"+p.False)
	}

	return []model.Issue{structural(
		"True/False question has invalid answer format",
		"Answer should be one of: "+strings.Join(accepted, ", "),
	)}
}

func (c *Checker) checkFillBlank(q model.Question) []model.Issue {
	var issues []model.Issue

	if strings.TrimSpace(q.Answer) == "" {
		issues = append(issues, structural("Fill-in-blank question has an empty answer", "Provide the expected answer"))
	}
	if strings.TrimSpace(q.Stem) != "" && !strings.Contains(q.Stem, "_") {
		issues = append(issues, model.Issue{
			Category:   model.IssueQuality,
			Message:    "Fill-in-blank question missing blank indicator",
			Suggestion: "Add ___ or blanks to indicate where answer should go",
		})
	}
	return issues
}

// TruthValue maps a true/false answer to its boolean meaning
func (c *Checker) TruthValue(q model.Question) (value bool, ok bool) {
	answer := strings.ToLower(strings.TrimSpace(q.Answer))
	for _, lang := range c.langs {
		p := c.pairs[lang]
		switch answer {
		case p.True:
			return true, true
		case p.False:
			return false, true
		}
	}
	return false, false
}

// inconsistentOptions flags duplicates and one option dwarfing another
func inconsistentOptions(options []string) bool {
	seen := make(map[string]bool, len(options))
	minLen, maxLen := -1, 0
	for _, opt := range options {
		key := strings.ToLower(strings.TrimSpace(opt))
		if seen[key] {
			return true
		}
		seen[key] = true

		n := utf8.RuneCountInString(strings.TrimSpace(opt))
		if minLen < 0 || n < minLen {
			minLen = n
		}
		if n > maxLen {
			maxLen = n
		}
	}
	return maxLen > 10*minLen
}

func structural(msg, suggestion string) model.Issue {
	return model.Issue{Category: model.IssueStructural, Message: msg, Suggestion: suggestion}
}
