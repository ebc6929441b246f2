package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/quizguard/internal/extract"
	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/util"
)

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

// Detector finds mutually exclusive claims across the questions of a batch
type Detector struct {
	extractor *extract.ClaimExtractor
	checker   *Checker

	maxBatch  int
	similar   float64 // stem similarity for numeric conflicts
	sameStem  float64 // stem similarity for polarity and answer conflicts
	stopwords map[string]bool
	negations map[string]bool
}

// profile is the comparable digest of one question
type profile struct {
	q          model.Question
	tokens     util.TokenSet
	negated    bool
	anchors    []string // numbers inside temporal claims, sorted
	numbers    []string // every number in the stem, sorted
	quantities []string // numbers the question asserts as true
	truth      bool
	hasTruth   bool
	answer     string
	numericAns bool
}

// NewDetector creates a detector reusing the validator's extractor and checker
func NewDetector(v *Validator, rules *model.RuleSet, cfg model.ContradictionConfig) *Detector {
	d := &Detector{
		extractor: v.Extractor(),
		checker:   v.Checker(),
		maxBatch:  cfg.MaxBatch,
		similar:   cfg.SimilarityThreshold,
		sameStem:  cfg.SameStemThreshold,
		stopwords: make(map[string]bool),
		negations: make(map[string]bool),
	}
	if rules != nil {
		for _, lr := range rules.Languages {
			for _, w := range lr.Stopwords {
				d.stopwords[strings.ToLower(w)] = true
			}
			for _, w := range lr.Negations {
				d.negations[strings.ToLower(w)] = true
			}
		}
	}
	return d
}

// Detect compares every pair of questions once. Pairs with different
// topics are skipped without deeper comparison. Contradictions are
// ordered by question id.
func (d *Detector) Detect(questions []model.Question) ([]model.Contradiction, error) {
	if d.maxBatch > 0 && len(questions) > d.maxBatch {
		return nil, fmt.Errorf("%w: %d questions, limit %d", model.ErrBatchTooLarge, len(questions), d.maxBatch)
	}

	sorted := append([]model.Question(nil), questions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	profiles := make([]*profile, len(sorted))
	for i, q := range sorted {
		profiles[i] = d.profile(q)
	}

	contradictions := []model.Contradiction{}
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			a, b := profiles[i], profiles[j]
			if topicMismatch(a.q, b.q) {
				continue
			}
			if c, ok := d.compare(a, b); ok {
				contradictions = append(contradictions, c)
			}
		}
	}
	return contradictions, nil
}

func topicMismatch(a, b model.Question) bool {
	ta := strings.ToLower(strings.TrimSpace(a.Topic))
	tb := strings.ToLower(strings.TrimSpace(b.Topic))
	return ta != "" && tb != "" && ta != tb
}

func (d *Detector) compare(a, b *profile) (model.Contradiction, bool) {
	sim := util.Jaccard(a.tokens, b.tokens)

	// numeric: same fact at the same time, disjoint values
	if sim >= d.similar && len(a.quantities) > 0 && len(b.quantities) > 0 &&
		equalStrings(a.anchors, b.anchors) && disjoint(a.quantities, b.quantities) {
		return model.Contradiction{
			Question1: a.q.ID,
			Question2: b.q.ID,
			Kind:      model.ContradictionNumeric,
			Description: fmt.Sprintf("Questions %s and %s give different values for the same fact: %s vs %s",
				a.q.ID, b.q.ID, strings.Join(a.quantities, ", "), strings.Join(b.quantities, ", ")),
		}, true
	}

	if sim < d.sameStem || !equalStrings(a.numbers, b.numbers) {
		return model.Contradiction{}, false
	}

	// polarity: the same statement marked both true and false
	if a.q.Type == model.QuestionTypeTrueFalse && b.q.Type == model.QuestionTypeTrueFalse &&
		a.hasTruth && b.hasTruth && (a.truth != a.negated) != (b.truth != b.negated) {
		return model.Contradiction{
			Question1:   a.q.ID,
			Question2:   b.q.ID,
			Kind:        model.ContradictionPolarity,
			Description: fmt.Sprintf("Questions %s and %s mark the same statement both true and false", a.q.ID, b.q.ID),
		}, true
	}

	// answer: the same question with different expected answers
	if expectsAnswer(a.q) && expectsAnswer(b.q) && a.answer != "" && b.answer != "" &&
		!a.numericAns && !b.numericAns && a.answer != b.answer {
		return model.Contradiction{
			Question1: a.q.ID,
			Question2: b.q.ID,
			Kind:      model.ContradictionAnswer,
			Description: fmt.Sprintf("Questions %s and %s ask the same thing but expect %q and %q",
				a.q.ID, b.q.ID, a.q.Answer, b.q.Answer),
		}, true
	}

	return model.Contradiction{}, false
}

func expectsAnswer(q model.Question) bool {
	return q.Type == model.QuestionTypeMCQ || q.Type == model.QuestionTypeFillBlank
}

func (d *Detector) profile(q model.Question) *profile {
	stem := extract.NormalizeText(q.Stem)
	p := &profile{
		q:      q,
		answer: strings.ToLower(strings.TrimSpace(q.Answer)),
	}

	var tokens []string
	for _, tok := range util.Tokenize(strings.ReplaceAll(strings.ToLower(stem), "n't", " not")) {
		switch {
		case d.negations[tok]:
			p.negated = !p.negated
		case isDigits(tok), d.stopwords[tok]:
		default:
			tokens = append(tokens, tok)
		}
	}
	p.tokens = util.NewTokenSet(tokens)

	// Numbers inside temporal claims anchor the fact in time
	var temporal [][2]int
	for _, s := range d.extractor.ExtractText(stem, q.Language) {
		if s.Kind == model.SignalTemporal {
			temporal = append(temporal, [2]int{s.Offset, s.Offset + len(s.MatchedText)})
		}
	}

	var rest []string
	for _, loc := range numberPattern.FindAllStringIndex(stem, -1) {
		n := normalizeNumber(stem[loc[0]:loc[1]])
		p.numbers = append(p.numbers, n)
		if within(loc, temporal) {
			p.anchors = append(p.anchors, n)
		} else {
			rest = append(rest, n)
		}
	}
	sort.Strings(p.anchors)
	sort.Strings(p.numbers)

	switch q.Type {
	case model.QuestionTypeTrueFalse:
		p.truth, p.hasTruth = d.checker.TruthValue(q)
		if p.hasTruth && p.truth && !p.negated {
			p.quantities = uniqueSorted(rest)
		}
	case model.QuestionTypeMCQ, model.QuestionTypeFillBlank:
		for _, m := range numberPattern.FindAllString(q.Answer, -1) {
			p.quantities = append(p.quantities, normalizeNumber(m))
		}
		p.quantities = uniqueSorted(p.quantities)
		p.numericAns = len(p.quantities) > 0
	}
	return p
}

// normalizeNumber drops thousands separators ("1,000", "1.000") and uses '.' for decimals
func normalizeNumber(s string) string {
	groups := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == ',' })
	if len(groups) == 1 {
		return s
	}
	thousands := true
	for _, g := range groups[1:] {
		if len(g) != 3 {
			thousands = false
			break
		}
	}
	if thousands {
		return strings.Join(groups, "")
	}
	return strings.ReplaceAll(s, ",", ".")
}

func within(loc []int, spans [][2]int) bool {
	for _, s := range spans {
		if loc[0] >= s[0] && loc[1] <= s[1] {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	set := util.NewTokenSet(in)
	return set.SortedKeys()
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func disjoint(a, b []string) bool {
	set := util.NewTokenSet(a)
	for _, v := range b {
		if _, ok := set[v]; ok {
			return false
		}
	}
	return true
}
