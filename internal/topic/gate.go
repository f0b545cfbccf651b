package topic

import "strings"

// RejectionMessage is the fixed reply recorded for out-of-domain questions.
const RejectionMessage = "Sorry, I can only answer questions about farming and agriculture. " +
	"Please ask me about crops, soil, pests, irrigation, or livestock."

// DefaultKeywords is the compiled-in domain vocabulary plus a few greeting
// tokens so salutations always get through. A deployment can replace it with
// an active topic profile row.
var DefaultKeywords = []string{
	// greetings
	"hello", "hi", "hey", "vanakkam", "namaste", "good morning", "good evening",
	// agriculture
	"agriculture", "farm", "farming", "farmer", "crop", "soil", "seed", "sowing",
	"harvest", "yield", "irrigation", "drip", "fertilizer", "fertiliser", "manure",
	"compost", "mulch", "pest", "pesticide", "insecticide", "aphid", "fungus",
	"weed", "plough", "tractor", "greenhouse", "nursery", "plant", "sapling",
	"leaf", "root", "fruit", "vegetable", "grain", "paddy", "rice", "wheat",
	"maize", "millet", "sugarcane", "cotton", "tomato", "onion", "chilli",
	"banana", "coconut", "mango", "groundnut", "pulses", "livestock", "cattle",
	"poultry", "dairy", "goat", "monsoon", "drought", "organic", "horticulture",
}

// Decision is the result of classifying one utterance.
type Decision struct {
	Accepted       bool
	MatchedKeyword string
}

// Gate classifies an utterance as in-domain or out-of-domain by
// case-insensitive substring match against its keyword set. There is no
// tokenization and no word-boundary check: a keyword embedded in a longer
// word still matches ("compost" matches "compostable"). That crudeness is the
// intended policy, not an oversight.
type Gate struct {
	keywords []string
}

// NewGate lower-cases, trims, and de-duplicates the keyword set. An empty set
// yields a gate that rejects everything.
func NewGate(keywords []string) *Gate {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return &Gate{keywords: out}
}

// Evaluate is a pure function of the utterance and the keyword set.
func (g *Gate) Evaluate(utterance string) Decision {
	lower := strings.ToLower(utterance)
	for _, k := range g.keywords {
		if strings.Contains(lower, k) {
			return Decision{Accepted: true, MatchedKeyword: k}
		}
	}
	return Decision{}
}

// Keywords returns a copy of the effective keyword set.
func (g *Gate) Keywords() []string {
	out := make([]string, len(g.keywords))
	copy(out, g.keywords)
	return out
}
