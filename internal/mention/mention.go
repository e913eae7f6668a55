// ABOUTME: Mention token scanning: trailing @user/#tag fragment, all tokens, suggestion splice
// ABOUTME: Pure functions over strings; tokens are a marker plus non-whitespace runs

package mention

import (
	"regexp"
	"strings"
)

var (
	trailingPattern = regexp.MustCompile(`[@#]\S+$`)
	anyPattern      = regexp.MustCompile(`[@#]\S+`)
	tokenPattern    = regexp.MustCompile(`^[@#]\S+$`)
)

// FindTrailing returns the token that ends text, if any.
// "hello @bob" yields "@bob"; "hello @bob " yields nothing.
func FindTrailing(text string) (string, bool) {
	loc := trailingPattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:loc[1]], true
}

// FindAll returns every non-overlapping token in text, left to right,
// duplicates included.
func FindAll(text string) []string {
	return anyPattern.FindAllString(text, -1)
}

// IsToken reports whether s is exactly one token.
func IsToken(s string) bool {
	return tokenPattern.MatchString(s)
}

// Query strips the leading marker from a token.
func Query(token string) string {
	if len(token) > 0 && (token[0] == '@' || token[0] == '#') {
		return token[1:]
	}
	return token
}

// Splice inserts a chosen suggestion into field. A token suggestion replaces
// the trailing partial token and gains a trailing space; anything else is
// appended verbatim.
func Splice(field, suggestion string) string {
	if strings.HasPrefix(suggestion, "@") || strings.HasPrefix(suggestion, "#") {
		return trailingPattern.ReplaceAllLiteralString(field, "") + suggestion + " "
	}
	return field + suggestion
}
