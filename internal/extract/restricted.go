package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/osintlab/papex/internal/model"
)

var (
	shareholderTitles = []string{"Actionnaires", "Actionnaires et bénéficiaires", "bénéficiaires effectifs"}
	realEstateTitles  = []string{"Biens immobiliers", "Biens immobiliers de"}

	// restrictionKeywords mark sections whose content requires an account
	// or accreditation to view.
	restrictionKeywords = []string{"réservé", "habilitation", "connectés"}
)

func restricted(text string) bool {
	for _, kw := range restrictionKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// parseShareholders returns the shareholdings section: a restricted-access
// notice when the section text carries a restriction keyword, otherwise the
// extracted holder list.
func parseShareholders(doc *goquery.Document) model.Shareholdings {
	empty := model.Shareholdings{Holders: []model.Shareholder{}}

	section := locateAny(doc, shareholderTitles, nil)
	if section == nil {
		return empty
	}

	text := trim(section.Text())
	if restricted(text) {
		return model.Shareholdings{Restricted: true, Note: text}
	}

	holders := []model.Shareholder{}
	section.Find("tr, ul li, .item").Each(func(_ int, item *goquery.Selection) {
		holder := model.Shareholder{}
		itemText := item.Text()

		if link := item.Find("a").First(); link.Length() > 0 {
			holder.Name = trim(link.Text())
		}
		if m := percentageExpr.FindStringSubmatch(itemText); m != nil {
			holder.Percentage = m[1]
		}
		if m := amountExpr.FindStringSubmatch(itemText); m != nil {
			holder.Amount = stripSpaces(m[1])
		}

		if holder.Name != "" || holder.Percentage != "" {
			holders = append(holders, holder)
		}
	})
	return model.Shareholdings{Holders: holders}
}

// parseRealEstate returns the property section: a restricted-access notice
// (capturing the sign-up link when present) or the extracted asset list.
func parseRealEstate(doc *goquery.Document, pageURL string) model.RealEstate {
	empty := model.RealEstate{Assets: []model.RealEstateAsset{}}

	section := locateAny(doc, realEstateTitles, nil)
	if section == nil {
		return empty
	}

	text := trim(section.Text())
	if restricted(text) {
		out := model.RealEstate{Restricted: true, Note: text}
		if link := section.Find(`a[href*="immobilier"]`).First(); link.Length() > 0 {
			if href := link.AttrOr("href", ""); href != "" {
				out.SignupLink = absoluteURL(pageURL, href)
			}
		}
		return out
	}

	assets := []model.RealEstateAsset{}
	section.Find("tr, ul li, .item").Each(func(_ int, item *goquery.Selection) {
		itemText := item.Text()
		asset := model.RealEstateAsset{
			Address:    firstMatch(assetAddressExpr, itemText),
			Type:       firstMatch(assetTypeExpr, itemText),
			Surface:    firstMatch(assetSurfaceExpr, itemText),
			Value:      firstMatch(assetValueExpr, itemText),
			AcquiredOn: firstMatch(assetAcquiredExpr, itemText),
		}
		if asset.Address != "" || asset.Type != "" {
			assets = append(assets, asset)
		}
	})
	return model.RealEstate{Assets: assets}
}
