// Package prompt builds the backend-ready prompt for an accepted utterance.
// Composition is pure string assembly: same inputs, same output, no I/O.
package prompt

import "strings"

// DefaultLanguage is the tag used when the caller does not request one.
const DefaultLanguage = "en"

// Per-language phrasings. A non-default known tag swaps the whole
// instruction-plus-request text into that language, it does not bolt a
// "translate this" directive onto the English prompt.
const (
	personaEN = `You are an experienced agriculture expert. Answer the farmer's question below using your knowledge of farming, crops, soil, pests, irrigation, livestock, and weather. Keep the answer practical and easy to follow.

Question:
`

	personaTA = `நீங்கள் அனுபவம் வாய்ந்த வேளாண் நிபுணர். விவசாயம், பயிர்கள், மண், பூச்சிகள், நீர்ப்பாசனம், கால்நடை மற்றும் வானிலை பற்றிய உங்கள் அறிவைப் பயன்படுத்தி கீழே உள்ள விவசாயியின் கேள்விக்கு பதிலளிக்கவும். பதில் நடைமுறைக்கு ஏற்றதாகவும் எளிதாகவும் இருக்கட்டும்.

கேள்வி:
`

	personaHI = `आप एक अनुभवी कृषि विशेषज्ञ हैं। खेती, फसल, मिट्टी, कीट, सिंचाई, पशुधन और मौसम के अपने ज्ञान का उपयोग करते हुए नीचे दिए गए किसान के प्रश्न का उत्तर दें। उत्तर व्यावहारिक और सरल रखें।

प्रश्न:
`
)

var phrasings = map[string]string{
	"en": personaEN,
	"ta": personaTA,
	"hi": personaHI,
}

// Compose builds the prompt for one accepted utterance. Unknown language tags
// fall back to the default phrasing with the answer language pinned to the
// requested tag.
func Compose(utterance, language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = DefaultLanguage
	}

	if p, ok := phrasings[language]; ok {
		return p + utterance
	}

	var b strings.Builder
	b.WriteString(personaEN)
	b.WriteString(utterance)
	b.WriteString("\n\nAnswer in the language with tag \"")
	b.WriteString(language)
	b.WriteString("\".")
	return b.String()
}

// Supported reports whether a tag has a dedicated phrasing.
func Supported(language string) bool {
	_, ok := phrasings[strings.ToLower(strings.TrimSpace(language))]
	return ok
}
