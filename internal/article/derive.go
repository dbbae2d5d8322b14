package article

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const wordsPerMinute = 200

var (
	slugInvalid  = regexp.MustCompile(`[^\w\s-]`)
	slugSeparate = regexp.MustCompile(`[-\s]+`)
)

// Slugify folds s to ASCII, lowercases it and joins its words with hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	folded = slugInvalid.ReplaceAllString(strings.ToLower(folded), "")

	return strings.Trim(slugSeparate.ReplaceAllString(folded, "-"), "-_")
}

// DeriveSlug builds the slug of a new article from its title and id.
func DeriveSlug(title, id string) string {
	return Slugify(title + "-" + id)
}

// DeriveReadingTime estimates reading minutes from the number of spaces in
// body, truncated.
func DeriveReadingTime(body string) int {
	return strings.Count(body, " ") / wordsPerMinute
}
