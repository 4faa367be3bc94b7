package extract

import (
	"github.com/PuerkitoBio/goquery"
)

var legalInfoTitles = []string{"Informations juridiques", "Informations juridiques de"}

// parseLegalInfo fills the open-ended label → value map from the legal-info
// section. The table tier stores every row under its normalized label; the
// pattern tier then backfills the well-known keys it can still find in the
// section text without overwriting table results.
func parseLegalInfo(doc *goquery.Document, info map[string]string) {
	section := locateAny(doc, legalInfoTitles, []string{"informations juridiques"})
	if section == nil {
		return
	}

	section.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := trim(cells.Eq(0).Text())
		value := trim(cells.Eq(1).Text())
		if label == "" || value == "" {
			return
		}
		key := normalizeLabel(label)
		if key == "" {
			return
		}
		if key == "siren" || key == "siret" {
			value = stripSpaces(value)
		}
		info[key] = value
	})

	applyLegalInfoPatterns(info, section.Text())
}

// applyLegalInfoPatterns is the pattern tier for legal info, also reused by
// the page-wide fallback sweep. Existing keys are never overwritten.
func applyLegalInfoPatterns(info map[string]string, text string) {
	setIfEmpty(info, "siren", stripSpaces(firstMatch(sirenTextExpr, text)))
	setIfEmpty(info, "siret", stripSpaces(firstMatch(siretTextExpr, text)))
	setIfEmpty(info, "forme_juridique", firstMatch(formeExpr, text))
	setIfEmpty(info, "numero_tva", firstMatch(tvaExpr, text))
	setIfEmpty(info, "inscription_rcs", firstMatch(rcsExpr, text))
}

func setIfEmpty(info map[string]string, key, value string) {
	if value == "" {
		return
	}
	if _, ok := info[key]; ok {
		return
	}
	info[key] = value
}
