package fake

import (
	"math"
	"strings"
	"unicode"
)

// wordCounts splits text into lower-cased words and counts them
func wordCounts(text string) map[string]float64 {
	counts := map[string]float64{}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		counts[word]++
	}
	return counts
}

// cosine returns the cosine similarity of two word count vectors, 0 when
// either is empty
func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for word, count := range a {
		dot += count * b[word]
		normA += count * count
	}
	for _, count := range b {
		normB += count * count
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
