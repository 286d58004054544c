package scope

import "strings"

// legacyScopes maps every spelling that has ever been persisted to the
// current vocabulary. Earlier app versions capitalized the values, used
// "self"/"personal"/"corporate", and briefly shipped an "insurance" scope
// that was removed before launch.
var legacyScopes = map[string]Scope{
	"individual": Individual,
	"self":       Individual,
	"personal":   Individual,
	"insurance":  Individual,
	"family":     Family,
	"household":  Family,
	"workplace":  Workplace,
	"corporate":  Workplace,
	"company":    Workplace,
}

// Normalize maps a raw persisted scope string onto the current enumeration.
// Unrecognized or empty input falls back to Individual; it never guesses
// beyond the table above.
func Normalize(raw string) Scope {
	if s, ok := legacyScopes[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return Individual
}
