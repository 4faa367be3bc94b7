package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxAncestorDepth bounds the upward walk from a matched heading.
const maxAncestorDepth = 10

const headingSelector = "h1, h2, h3, h4, h5, h6"

// locateSection returns the DOM subtree most likely to contain the section
// titled like title, or nil. Heading text is matched tolerantly (containment
// either direction, or the target containing the heading's first word) so
// suffix drift like "Activité" vs "Activité de ACME" still resolves. The
// markup around the heading is not trusted either: the walk up prefers a
// semantic section container but settles for section-ish selectors, the
// grandparent, then the parent.
func locateSection(doc *goquery.Document, title string) *goquery.Selection {
	search := strings.ToLower(trim(title))
	if search == "" {
		return nil
	}

	var found *goquery.Selection
	doc.Find(headingSelector).EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		headingText := strings.ToLower(trim(heading.Text()))
		if headingText == "" || !headingMatches(headingText, search) {
			return true
		}

		// Walk up looking for a semantic section container.
		parent := heading.Parent()
		for depth := 0; depth < maxAncestorDepth && parent.Length() > 0; depth++ {
			if sectionLike(parent) {
				found = parent
				return false
			}
			parent = parent.Parent()
		}

		// No container within the bound: nearest section-like ancestor,
		// then grandparent, then parent.
		if closest := heading.Closest(`section, div[class*="section"]`); closest.Length() > 0 {
			found = closest
			return false
		}
		if gp := heading.Parent().Parent(); gp.Length() > 0 {
			found = gp
			return false
		}
		if p := heading.Parent(); p.Length() > 0 {
			found = p
			return false
		}
		return true
	})

	return found
}

// locateByHeadingKeyword is the second-attempt locator: a direct scan of h2
// headings for a keyword, resolving to the nearest section or the heading's
// grandparent.
func locateByHeadingKeyword(doc *goquery.Document, keyword string) *goquery.Selection {
	keyword = strings.ToLower(keyword)

	var found *goquery.Selection
	doc.Find("h2").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(heading.Text()), keyword) {
			return true
		}
		if closest := heading.Closest("section"); closest.Length() > 0 {
			found = closest
			return false
		}
		if gp := heading.Parent().Parent(); gp.Length() > 0 {
			found = gp
			return false
		}
		found = heading.Parent()
		return false
	})

	return found
}

// locateAny tries each title through the full locator, then each keyword
// through the direct heading scan.
func locateAny(doc *goquery.Document, titles []string, keywords []string) *goquery.Selection {
	for _, title := range titles {
		if sel := locateSection(doc, title); sel != nil {
			return sel
		}
	}
	for _, kw := range keywords {
		if sel := locateByHeadingKeyword(doc, kw); sel != nil {
			return sel
		}
	}
	return nil
}

func headingMatches(headingText, search string) bool {
	if strings.Contains(headingText, search) || strings.Contains(search, headingText) {
		return true
	}
	first, _, _ := strings.Cut(headingText, " ")
	return first != "" && strings.Contains(search, first)
}

func sectionLike(sel *goquery.Selection) bool {
	if goquery.NodeName(sel) == "section" {
		return true
	}
	class, ok := sel.Attr("class")
	return ok && strings.Contains(strings.ToLower(class), "section")
}
