package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
)

const (
	apostrophe      = '\''
	rightQuote      = '’'
	period          = '.'
	contractionNot  = "n't"
	ellipsisPattern = "..."
)

// clitics split off the end of a word, longest first.
var clitics = []string{"'re", "'ve", "'ll", "'s", "'d", "'m"}

// Tokenizer splits raw text into tokens carrying byte offsets into it.
type Tokenizer func(text string) []nlp.Token

// NewTokenizerPTB returns a tokenizer following Penn Treebank conventions:
// punctuation is split from the edges of words, clitics ('s, 're, n't, ...)
// become tokens of their own, and hyphenated words and abbreviations with
// internal periods stay together.
func NewTokenizerPTB() Tokenizer {
	return func(text string) []nlp.Token {
		var tokens []nlp.Token
		for start := 0; start < len(text); {
			r, size := utf8.DecodeRuneInString(text[start:])
			if unicode.IsSpace(r) {
				start += size
				continue
			}
			end := start
			for end < len(text) {
				r, size := utf8.DecodeRuneInString(text[end:])
				if unicode.IsSpace(r) {
					break
				}
				end += size
			}
			tokens = appendChunk(tokens, text[start:end], start)
			start = end
		}
		return tokens
	}
}

// appendChunk tokenizes a whitespace delimited chunk found at offset.
func appendChunk(tokens []nlp.Token, chunk string, offset int) []nlp.Token {
	// leading punctuation, except contractions like 's or 'em
	for len(chunk) > 0 {
		r, size := utf8.DecodeRuneInString(chunk)
		if !isEdgePunct(r) || isClitic(chunk) {
			break
		}
		if strings.HasPrefix(chunk, ellipsisPattern) {
			size = len(ellipsisPattern)
		}
		tokens = append(tokens, nlp.NewToken(chunk[:size], offset))
		chunk, offset = chunk[size:], offset+size
	}
	if len(chunk) == 0 {
		return tokens
	}

	var trailing []nlp.Token
	for len(chunk) > 0 {
		r, size := utf8.DecodeLastRuneInString(chunk)
		if !isEdgePunct(r) {
			break
		}
		if strings.HasSuffix(chunk, ellipsisPattern) && len(chunk) > len(ellipsisPattern) {
			size = len(ellipsisPattern)
		} else if r == period && keepsPeriod(chunk) {
			break
		}
		cut := len(chunk) - size
		trailing = append(trailing, nlp.NewToken(chunk[cut:], offset+cut))
		chunk = chunk[:cut]
	}

	if len(chunk) > 0 {
		word, clitic := splitClitic(chunk)
		if len(word) > 0 {
			tokens = append(tokens, nlp.NewToken(word, offset))
		}
		if len(clitic) > 0 {
			tokens = append(tokens, nlp.NewToken(clitic, offset+len(word)))
		}
	}
	for i := len(trailing) - 1; i >= 0; i-- {
		tokens = append(tokens, trailing[i])
	}
	return tokens
}

// isEdgePunct reports punctuation split off word edges. Hyphens and
// apostrophes inside a word never reach here.
func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

var abbreviations = map[string]bool{
	"no.":  true,
	"mr.":  true,
	"mrs.": true,
	"ms.":  true,
	"dr.":  true,
	"st.":  true,
	"vs.":  true,
	"etc.": true,
}

// keepsPeriod reports abbreviations such as "U.S." or "e.g." whose final
// period is part of the word.
func keepsPeriod(chunk string) bool {
	if abbreviations[strings.ToLower(chunk)] {
		return true
	}
	body := chunk[:len(chunk)-1]
	if !strings.ContainsRune(body, period) {
		return false
	}
	for _, r := range body {
		if r != period && !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func normalizeApostrophes(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), string(rightQuote), string(apostrophe))
}

func isClitic(chunk string) bool {
	lower := normalizeApostrophes(chunk)
	for _, clitic := range clitics {
		if lower == clitic {
			return true
		}
	}
	return false
}

// splitClitic splits "Steff's" into "Steff" and "'s", "don't" into "do" and
// "n't".
func splitClitic(word string) (string, string) {
	lower := normalizeApostrophes(word)
	if strings.HasSuffix(lower, contractionNot) && len(lower) > len(contractionNot) {
		cut := strings.LastIndexAny(word, string(apostrophe)+string(rightQuote))
		// back up over the 'n'
		cut--
		if cut > 0 {
			return word[:cut], word[cut:]
		}
	}
	for _, clitic := range clitics {
		if strings.HasSuffix(lower, clitic) && len(lower) > len(clitic) {
			cut := strings.LastIndexAny(word, string(apostrophe)+string(rightQuote))
			if cut > 0 {
				return word[:cut], word[cut:]
			}
		}
	}
	return word, ""
}

// SentenceEnds are tokens that close a sentence.
var SentenceEnds = map[string]bool{
	".":   true,
	"?":   true,
	"!":   true,
	"...": true,
}

var closers = map[string]bool{
	"\"": true,
	"'":  true,
	")":  true,
	"]":  true,
	"”":  true,
	"’":  true,
}

// Sentences splits tokens into sentences after sentence-final punctuation,
// keeping closing quotes and brackets with the sentence they close.
func Sentences(tokens []nlp.Token) []nlp.Span {
	var (
		spans []nlp.Span
		start int
	)
	for i := 0; i < len(tokens); i++ {
		if !SentenceEnds[tokens[i].Text] {
			continue
		}
		for i+1 < len(tokens) && (SentenceEnds[tokens[i+1].Text] || closers[tokens[i+1].Text]) {
			i++
		}
		spans = append(spans, nlp.Span{Start: start, End: i + 1})
		start = i + 1
	}
	if start < len(tokens) {
		spans = append(spans, nlp.Span{Start: start, End: len(tokens)})
	}
	return spans
}
