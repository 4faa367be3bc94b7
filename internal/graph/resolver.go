package graph

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizePersonName standardizes a person name for matching: lower-cased,
// diacritics stripped, whitespace collapsed.
func NormalizePersonName(name string) string {
	out, _, err := transform.String(stripMarks, name)
	if err != nil {
		out = name
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// SamePerson decides whether two name strings denote the same person. After
// normalization the names match when they are identical, when two-token
// names are each other's reversal ("First Last" vs "Last First"), when the
// token sets are equal regardless of order, or when the leading or trailing
// token pair matches as a sorted pair with the remaining tokens matching too.
//
// This is a merge heuristic, not an identity function: it is not transitive
// and can false-positive on namesakes sharing given-name patterns. No
// birth-date tie-breaking is applied; the upstream data does not carry birth
// dates reliably enough to gate merges on them.
func SamePerson(a, b string) bool {
	na, nb := NormalizePersonName(a), NormalizePersonName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	ta, tb := strings.Fields(na), strings.Fields(nb)
	if len(ta) < 2 || len(tb) < 2 {
		return false
	}

	// "First Last" vs "Last First".
	if len(ta) == 2 && len(tb) == 2 && ta[0] == tb[1] && ta[1] == tb[0] {
		return true
	}

	// Same tokens in any order.
	if len(ta) == len(tb) && equalSorted(ta, tb) {
		return true
	}

	// Leading or trailing pair matches as a sorted pair, with the remaining
	// tokens accounted for on both sides.
	if pairAndRestMatch(ta, tb, true) || pairAndRestMatch(ta, tb, false) {
		return true
	}
	return false
}

func pairAndRestMatch(a, b []string, leading bool) bool {
	var pairA, restA, pairB, restB []string
	if leading {
		pairA, restA = a[:2], a[2:]
		pairB, restB = b[:2], b[2:]
	} else {
		pairA, restA = a[len(a)-2:], a[:len(a)-2]
		pairB, restB = b[len(b)-2:], b[:len(b)-2]
	}
	if !equalSorted(pairA, pairB) {
		return false
	}
	return equalSorted(restA, restB)
}

func equalSorted(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}
