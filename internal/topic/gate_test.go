package topic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateAcceptsDomainVocabulary(t *testing.T) {
	g := NewGate(DefaultKeywords)

	for _, in := range []string{
		"How do I control aphids on tomato plants?",
		"best fertilizer for paddy",
		"My SOIL is too acidic",
		"hello there",
	} {
		d := g.Evaluate(in)
		assert.True(t, d.Accepted, "expected accept: %q", in)
		assert.NotEmpty(t, d.MatchedKeyword)
	}
}

func TestEvaluateRejectsOffTopic(t *testing.T) {
	g := NewGate(DefaultKeywords)

	d := g.Evaluate("What's the weather like on Mars tonight for a party?")
	assert.False(t, d.Accepted)
	assert.Empty(t, d.MatchedKeyword)
}

func TestEvaluateIsCaseInsensitive(t *testing.T) {
	g := NewGate(DefaultKeywords)

	upper := g.Evaluate("PEST control")
	lower := g.Evaluate("pest control")
	assert.Equal(t, lower.Accepted, upper.Accepted)
	assert.True(t, upper.Accepted)
}

func TestEvaluateMatchesInsideLongerWords(t *testing.T) {
	// No word-boundary check: "compost" inside "compostable" counts.
	// This is the documented matching policy, not a defect to fix.
	g := NewGate(DefaultKeywords)

	d := g.Evaluate("compostable")
	assert.True(t, d.Accepted)
}

func TestEvaluateNeverPanics(t *testing.T) {
	g := NewGate(DefaultKeywords)

	for _, in := range []string{
		"a", "?!.", strings.Repeat("x", 10_000), "日本語のテキスト", "   ", "\n\t",
	} {
		assert.NotPanics(t, func() { g.Evaluate(in) })
	}
}

func TestEvaluateRejectsPunctuationOnly(t *testing.T) {
	g := NewGate(DefaultKeywords)
	assert.False(t, g.Evaluate("   ...!!!   ").Accepted)
}

func TestEmptyKeywordSetRejectsEverything(t *testing.T) {
	g := NewGate(nil)

	assert.False(t, g.Evaluate("how do I grow tomato plants").Accepted)
	assert.False(t, g.Evaluate("hello").Accepted)
}

func TestNewGateNormalizesKeywords(t *testing.T) {
	g := NewGate([]string{" Pest ", "PEST", "pest", "", "  "})

	assert.Equal(t, []string{"pest"}, g.Keywords())
	assert.True(t, g.Evaluate("pesticide dosage").Accepted)
}
