package fulltext

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the minimum length for non-CJK word tokens.
const MinTokenLength = 2

// Tokenize splits text into index terms.
//
// Input is NFKC-normalized and lowercased, then split on whitespace and
// punctuation. CJK runs are expanded into every individual character plus
// every adjacent-character bigram, which trades vocabulary size for recall
// on languages without word boundaries. Other scripts are emitted as whole
// words of length >= 2, minus stop words.
//
// Tokenize is a pure function: same input, same output, every call.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}

	normalized := strings.ToLower(norm.NFKC.String(text))
	segments := strings.FieldsFunc(normalized, isSeparator)

	tokens := make([]string, 0, len(segments))
	for _, seg := range segments {
		tokens = appendSegmentTokens(tokens, seg)
	}
	return tokens
}

// appendSegmentTokens expands one separator-free segment into terms.
// Mixed segments (e.g. "go语言") are split into script runs first.
func appendSegmentTokens(tokens []string, seg string) []string {
	runes := []rune(seg)

	var run []rune
	runIsCJK := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runIsCJK {
			tokens = appendCJKTokens(tokens, run)
		} else {
			tokens = appendWordToken(tokens, string(run))
		}
		run = run[:0]
	}

	for _, r := range runes {
		cjk := isCJK(r)
		if len(run) > 0 && cjk != runIsCJK {
			flush()
		}
		runIsCJK = cjk
		run = append(run, r)
	}
	flush()

	return tokens
}

// appendCJKTokens emits every character and every adjacent bigram of a CJK run.
func appendCJKTokens(tokens []string, runes []rune) []string {
	for i, r := range runes {
		ch := string(r)
		if _, stop := stopWords[ch]; !stop {
			tokens = append(tokens, ch)
		}
		if i+1 < len(runes) {
			tokens = append(tokens, string(runes[i:i+2]))
		}
	}
	return tokens
}

// appendWordToken emits a whole non-CJK word, subject to length and stop word rules.
func appendWordToken(tokens []string, word string) []string {
	if len(word) < MinTokenLength {
		return tokens
	}
	if _, stop := stopWords[word]; stop {
		return tokens
	}
	return append(tokens, word)
}

// isSeparator reports whether r splits segments: whitespace plus the
// punctuation class (ASCII and CJK punctuation, symbols).
func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// isCJK reports whether r is in the Han, Hiragana, Katakana, or Hangul ranges.
func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK Extension A
		return true
	case r >= 0x3040 && r <= 0x309F: // Hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // Katakana
		return true
	case r >= 0xAC00 && r <= 0xD7AF: // Hangul Syllables
		return true
	case r >= 0x1100 && r <= 0x11FF: // Hangul Jamo
		return true
	}
	return false
}

// stopWords excludes high-frequency function words from indexing.
// English plus common Chinese function words.
var stopWords = buildStopWordSet([]string{
	// English
	"the", "a", "an", "and", "or", "but", "if", "then", "else", "when",
	"at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "to", "from",
	"up", "down", "in", "out", "on", "off", "over", "under", "again",
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"do", "does", "did", "will", "would", "could", "should", "may", "might",
	"this", "that", "these", "those", "it", "its", "of", "as", "so", "not",
	// Chinese
	"的", "了", "和", "是", "在", "我", "有", "他", "这", "中",
	"大", "来", "上", "国", "个", "到", "说", "们", "为", "子",
	"你", "地", "出", "道", "也", "时", "年", "得", "就", "那",
	"要", "下", "以", "生", "会", "自", "着", "去", "之", "过",
})

func buildStopWordSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
