package textutil

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// cuePattern matches bracketed non-speech annotations common in captions.
var cuePattern = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

const minWordLen = 3

// Words returns the lowercase words of text that count toward agreement.
// Apostrophes inside a word are kept so contractions stay one token.
func Words(text string) []string {
	text = cuePattern.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r != '\'' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if utf8.RuneCountInString(f) < minWordLen {
			continue
		}
		words = append(words, f)
	}
	return words
}

type wordVector map[string]float64

func vectorize(text string) wordVector {
	words := Words(text)
	if len(words) == 0 {
		return nil
	}
	v := make(wordVector, len(words))
	for _, w := range words {
		v[w]++
	}
	return v
}

func (v wordVector) norm() float64 {
	var sum float64
	for _, n := range v {
		sum += n * n
	}
	return math.Sqrt(sum)
}

// Agreement scores how closely two transcripts of the same audio match, from
// 0 (no shared words) to 1 (identical word counts). Empty input scores 0.
func Agreement(a, b string) float64 {
	va, vb := vectorize(a), vectorize(b)
	if va == nil || vb == nil {
		return 0
	}
	if len(vb) < len(va) {
		va, vb = vb, va
	}
	var dot float64
	for w, n := range va {
		dot += n * vb[w]
	}
	if dot == 0 {
		return 0
	}
	return math.Min(1, dot/(va.norm()*vb.norm()))
}
