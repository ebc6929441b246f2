package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/quizguard/internal/model"
)

// ClaimExtractor finds unverifiable-claim signals in question text
type ClaimExtractor struct {
	weights   map[model.SignalKind]float64
	languages []*languageMatcher // sorted by name
}

type languageMatcher struct {
	name      string
	matchers  map[model.SignalKind][]matcher
	stopwords map[string]bool // proper-noun stopwords
}

type matcher struct {
	re      *regexp.Regexp
	keyword bool // requires a word boundary on both sides
	domain  string
}

type candidate struct {
	kind     model.SignalKind
	start    int
	end      int
	domain   string
	language string
}

// NewClaimExtractor compiles the rule table into matchers
func NewClaimExtractor(rules *model.RuleSet) (*ClaimExtractor, error) {
	if rules == nil {
		return nil, fmt.Errorf("claim extractor requires a rule set")
	}

	e := &ClaimExtractor{weights: make(map[model.SignalKind]float64, len(rules.Weights))}
	for kind, w := range rules.Weights {
		e.weights[kind] = w
	}

	names := make([]string, 0, len(rules.Languages))
	for name := range rules.Languages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lm, err := compileLanguage(name, rules.Languages[name])
		if err != nil {
			return nil, err
		}
		e.languages = append(e.languages, lm)
	}
	return e, nil
}

func compileLanguage(name string, lr model.LanguageRules) (*languageMatcher, error) {
	lm := &languageMatcher{
		name:      name,
		matchers:  make(map[model.SignalKind][]matcher),
		stopwords: make(map[string]bool, len(lr.ProperNounStopwords)),
	}
	for _, w := range lr.ProperNounStopwords {
		lm.stopwords[strings.ToLower(w)] = true
	}

	addPatterns := func(kind model.SignalKind, patterns []string) error {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return fmt.Errorf("language %s: invalid pattern %q: %w", name, p, err)
			}
			lm.matchers[kind] = append(lm.matchers[kind], matcher{re: re})
		}
		return nil
	}
	if err := addPatterns(model.SignalTemporal, lr.TemporalPatterns); err != nil {
		return nil, err
	}
	if err := addPatterns(model.SignalNumeric, lr.NumericPatterns); err != nil {
		return nil, err
	}

	for _, kw := range lr.TemporalKeywords {
		lm.matchers[model.SignalTemporal] = append(lm.matchers[model.SignalTemporal], keywordMatcher(kw, ""))
	}

	domains := make([]string, 0, len(lr.DomainKeywords))
	for d := range lr.DomainKeywords {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	for _, d := range domains {
		for _, kw := range lr.DomainKeywords[d] {
			lm.matchers[model.SignalDomainRisk] = append(lm.matchers[model.SignalDomainRisk], keywordMatcher(kw, d))
		}
	}
	return lm, nil
}

// keywordMatcher matches kw case-insensitively with flexible inner whitespace
func keywordMatcher(kw, domain string) matcher {
	parts := strings.Fields(kw)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return matcher{
		re:      regexp.MustCompile(`(?i)` + strings.Join(parts, `\s+`)),
		keyword: true,
		domain:  domain,
	}
}

// Extract returns the claim signals in the stem and every option.
// Signals are ordered by source (stem first) and then by offset.
func (e *ClaimExtractor) Extract(q model.Question) []model.ClaimSignal {
	languages := e.languagesFor(q.Language)

	signals := e.extractText(NormalizeText(q.Stem), "stem", languages)
	for i, opt := range q.Options {
		signals = append(signals, e.extractText(NormalizeText(opt), fmt.Sprintf("option[%d]", i), languages)...)
	}
	return signals
}

// ExtractText scans a single piece of text. An empty language scans with every language.
func (e *ClaimExtractor) ExtractText(text, language string) []model.ClaimSignal {
	return e.extractText(NormalizeText(text), "stem", e.languagesFor(language))
}

func (e *ClaimExtractor) languagesFor(language string) []*languageMatcher {
	if language != "" {
		for _, lm := range e.languages {
			if lm.name == language {
				return []*languageMatcher{lm}
			}
		}
	}
	return e.languages
}

func (e *ClaimExtractor) extractText(text, source string, languages []*languageMatcher) []model.ClaimSignal {
	if text == "" {
		return nil
	}

	var accepted []candidate
	for _, kind := range model.SignalKinds {
		var found []candidate
		if kind == model.SignalProperNoun {
			for _, lm := range languages {
				found = append(found, properNouns(text, lm)...)
			}
		} else {
			for _, lm := range languages {
				for _, m := range lm.matchers[kind] {
					for _, loc := range m.re.FindAllStringIndex(text, -1) {
						if loc[0] == loc[1] {
							continue
						}
						if m.keyword && !atWordBoundary(text, loc[0], loc[1]) {
							continue
						}
						found = append(found, candidate{kind: kind, start: loc[0], end: loc[1], domain: m.domain, language: lm.name})
					}
				}
			}
		}

		// Earliest and longest first; ties go to the first language
		sort.SliceStable(found, func(i, j int) bool {
			if found[i].start != found[j].start {
				return found[i].start < found[j].start
			}
			if found[i].end != found[j].end {
				return found[i].end > found[j].end
			}
			return found[i].language < found[j].language
		})

		for _, c := range found {
			if !overlapsAny(c, accepted) {
				accepted = append(accepted, c)
			}
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	signals := make([]model.ClaimSignal, 0, len(accepted))
	for _, c := range accepted {
		signals = append(signals, model.ClaimSignal{
			Kind:        c.kind,
			MatchedText: text[c.start:c.end],
			Weight:      e.weights[c.kind],
			Domain:      c.domain,
			Language:    c.language,
			Source:      source,
			Offset:      c.start,
		})
	}
	return signals
}

func overlapsAny(c candidate, accepted []candidate) bool {
	for _, a := range accepted {
		if c.start < a.end && a.start < c.end {
			return true
		}
	}
	return false
}

// properNouns finds runs of capitalized words. A run opening a sentence
// only counts when it spans at least two words.
func properNouns(text string, lm *languageMatcher) []candidate {
	words := Words(text)
	var out []candidate

	i := 0
	for i < len(words) {
		if !properWord(words[i], lm) {
			i++
			continue
		}
		j := i + 1
		for j < len(words) && properWord(words[j], lm) && !words[j].SentenceStart && Gap(text, words[j-1], words[j]) == " " {
			j++
		}
		if !words[i].SentenceStart || j-i >= 2 {
			out = append(out, candidate{
				kind:     model.SignalProperNoun,
				start:    words[i].Start,
				end:      words[j-1].End,
				language: lm.name,
			})
		}
		i = j
	}
	return out
}

func properWord(w Word, lm *languageMatcher) bool {
	if len([]rune(w.Text)) < 2 || !isCapitalized(w.Text) {
		return false
	}
	return !lm.stopwords[strings.ToLower(w.Text)]
}
