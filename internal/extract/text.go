package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// NormalizeText reduces markup to visible text and collapses whitespace.
// Signal offsets are byte offsets into the returned string.
func NormalizeText(text string) string {
	if strings.ContainsRune(text, '<') {
		if doc, err := html.Parse(strings.NewReader(text)); err == nil {
			text = extractVisibleText(doc)
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// Word is a run of letters and digits in a text
type Word struct {
	Text          string
	Start, End    int  // Byte offsets
	SentenceStart bool // First word of a sentence
}

// Words splits text into words, marking the first word of each sentence
func Words(text string) []Word {
	var words []Word
	sentenceStart := true
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		words = append(words, Word{Text: text[start:end], Start: start, End: end, SentenceStart: sentenceStart})
		sentenceStart = false
		start = -1
	}

	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		switch r {
		case '.', '!', '?', ':', ';', '\n':
			sentenceStart = true
		}
	}
	flush(len(text))
	return words
}

// Gap returns the text between two consecutive words
func Gap(text string, a, b Word) string {
	return text[a.End:b.Start]
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// atWordBoundary reports whether text[start:end] is not glued to neighbouring letters or digits
func atWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// isCapitalized reports whether w starts with an upper-case letter
func isCapitalized(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r)
}
