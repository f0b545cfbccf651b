package utils

import "strings"

// NormalizeLanguage maps the short tags the pipeline uses to the BCP-47 codes
// the speech providers want. Full codes pass through untouched.
func NormalizeLanguage(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "", "en", "en-US":
		return "en-US"
	case "ta", "ta-IN":
		return "ta-IN"
	case "hi", "hi-IN":
		return "hi-IN"
	default:
		return v
	}
}
