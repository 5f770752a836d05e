package retrieval

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Query is a normalized search query.
type Query struct {
	Raw string
	// Terms are the distinct non-stopword tokens in first-seen order.
	Terms []string
	// Tokens keeps every non-stopword token in order, duplicates included.
	Tokens []string
}

// ParseQuery normalizes q: NFKC, lowercase, split on anything that is not a
// letter or digit, drop stopwords and lone letters. Lone digits are kept
// since they are valid Dependents values.
func ParseQuery(q string) Query {
	out := Query{Raw: q}
	seen := make(map[string]struct{})
	for _, tok := range words(q) {
		if _, stop := stopwords[tok]; stop || loneLetter(tok) {
			continue
		}
		out.Tokens = append(out.Tokens, tok)
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out.Terms = append(out.Terms, tok)
	}
	return out
}

// Empty reports whether the query has no usable terms.
func (q Query) Empty() bool { return len(q.Terms) == 0 }

func loneLetter(tok string) bool {
	r, n := utf8.DecodeRuneInString(tok)
	return n == len(tok) && unicode.IsLetter(r)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

func words(s string) []string {
	return wordRe.FindAllString(normalize(s), -1)
}

// Comparison words (above, below, over, under) are cues, so they are not listed here.
var stopwords = func() map[string]struct{} {
	list := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as",
		"is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down",
		"again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after",
		"out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"me", "show", "tell", "what", "which", "who", "how", "many", "much", "vs", "versus", "all", "any", "there",
		"do", "does", "did", "have", "has", "had", "their", "them", "they", "whose", "give", "list", "find",
	}
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}()
