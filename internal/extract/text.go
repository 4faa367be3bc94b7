package extract

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

// stripSpaces removes all whitespace, used for SIREN/SIRET digit runs.
func stripSpaces(s string) string {
	return whitespaceExpr.ReplaceAllString(s, "")
}

// stripDiacritics decomposes the string and removes combining marks, so
// "Dénomination" compares as "Denomination".
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func deaccent(s string) string {
	out, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeLabel turns a visible label cell into a stable legal-info key:
// lower-cased, de-accented, spaces to underscores, other punctuation dropped.
// "Numéro de TVA" becomes "numero_de_tva".
func normalizeLabel(label string) string {
	key := strings.ToLower(deaccent(trim(label)))
	key = whitespaceExpr.ReplaceAllString(key, "_")
	key = legalInfoKeyExpr.ReplaceAllString(key, "")
	return strings.Trim(key, "_")
}

// absoluteURL resolves href against the page URL, matching how the browser
// would resolve relative links.
func absoluteURL(pageURL, href string) string {
	href = trim(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
