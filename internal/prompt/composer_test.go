package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeContainsUtterance(t *testing.T) {
	const q = "How do I control aphids on tomato plants?"

	for _, lang := range []string{"", "en", "ta", "hi", "fr"} {
		assert.Contains(t, Compose(q, lang), q, "language %q", lang)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	const q = "when should I sow paddy"

	assert.Equal(t, Compose(q, "ta"), Compose(q, "ta"))
	assert.Equal(t, Compose(q, ""), Compose(q, ""))
}

func TestComposeSwitchesWholePhrasingForKnownTags(t *testing.T) {
	const q = "how much water does sugarcane need"

	en := Compose(q, "en")
	ta := Compose(q, "ta")
	hi := Compose(q, "hi")

	assert.NotEqual(t, en, ta)
	assert.NotEqual(t, en, hi)
	// known tags replace the instruction text, they do not append to the
	// English one
	assert.False(t, strings.HasPrefix(ta, en))
	assert.False(t, strings.Contains(ta, "agriculture expert"))
}

func TestComposeUnknownTagPinsAnswerLanguage(t *testing.T) {
	out := Compose("soil ph for wheat", "fr")

	assert.Contains(t, out, "agriculture expert")
	assert.Contains(t, out, `"fr"`)
}

func TestComposeDefaultsEmptyTagToEnglish(t *testing.T) {
	const q = "soil ph for wheat"
	assert.Equal(t, Compose(q, "en"), Compose(q, ""))
	assert.Equal(t, Compose(q, "en"), Compose(q, "  EN "))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("en"))
	assert.True(t, Supported("ta"))
	assert.True(t, Supported("HI"))
	assert.False(t, Supported("fr"))
}
