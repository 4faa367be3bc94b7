package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/osintlab/papex/internal/model"
)

// headOfficeName is the site's label for the registered head office entry.
const headOfficeName = "Siège et établissement principal"

var (
	establishmentTitles = []string{"Etablissements", "Etablissements de", "Établissements"}
	directorTitles      = []string{"Dirigeants", "Dirigeants et représentants", "Dirigeants de"}
	documentTitles      = []string{"Documents juridiques", "Documents juridiques de"}
	bodaccTitles        = []string{"BODACC", "Annonces BODACC", "Annonces BODACC de"}
)

// parseEstablishments extracts establishment entries from the section's list
// items. An item joins the result only when at least one meaningful field
// (SIRET, name or address) was recovered.
func parseEstablishments(doc *goquery.Document) []model.Establishment {
	section := locateAny(doc, establishmentTitles, []string{"etablissements", "établissements"})
	if section == nil {
		return nil
	}

	var out []model.Establishment
	section.Find("ul li").Each(func(_ int, item *goquery.Selection) {
		est := establishmentFromText(item.Text())
		if est.SIRET != "" || est.Name != "" || est.Address != "" {
			out = append(out, est)
		}
	})
	return out
}

func establishmentFromText(text string) model.Establishment {
	est := model.Establishment{}

	if m := siretExpr.FindStringSubmatch(text); m != nil {
		est.SIRET = stripSpaces(m[1])
	}
	switch {
	case strings.Contains(text, "En activité"):
		est.Status = model.StatusActive
	case strings.Contains(text, "Fermé"):
		est.Status = model.StatusClosed
	}
	if strings.Contains(text, "Siège") {
		est.Name = headOfficeName
	}
	if address := firstMatch(addressExpr, text); address != "" {
		est.Address = address
		if m := postalCityExpr.FindStringSubmatch(address); m != nil {
			est.PostalCode = m[1]
			est.City = trim(m[2])
		}
	}
	est.CreatedOn = firstMatch(createdOnExpr, text)

	return est
}

// parseDirectors extracts officer entries. The display name comes from the
// item's link; role, age/birth month and mandate dates come from the item
// text.
func parseDirectors(doc *goquery.Document) []model.Director {
	section := locateAny(doc, directorTitles, []string{"dirigeants"})
	if section == nil {
		return nil
	}

	var out []model.Director
	section.Find("ul li").Each(func(_ int, item *goquery.Selection) {
		dir := directorFromItem(item)
		if dir.FullName != "" || dir.LastName != "" {
			out = append(out, dir)
		}
	})
	return out
}

func directorFromItem(item *goquery.Selection) model.Director {
	dir := model.Director{}
	text := item.Text()

	if link := item.Find("a").First(); link.Length() > 0 {
		dir.FullName = trim(link.Text())
		dir.FirstName, dir.LastName = splitFullName(dir.FullName)
	}
	dir.Role = firstMatch(roleExpr, text)
	if m := ageBirthExpr.FindStringSubmatch(text); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			dir.AgeYears = age
		}
		dir.BirthMonth = m[2]
	}
	if m := termSinceExpr.FindStringSubmatch(text); m != nil {
		dir.TermStart = m[1]
	} else if m := termRangeExpr.FindStringSubmatch(text); m != nil {
		dir.TermStart = m[1]
		dir.TermEnd = m[2]
		dir.Former = true
	}
	if strings.Contains(strings.ToLower(text), "ancien") {
		dir.Former = true
	}

	return dir
}

// splitFullName follows the site's "First Last…" display order: first token
// is the given name, the rest is the surname. A single token is a surname.
func splitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch {
	case len(parts) >= 2:
		return parts[0], strings.Join(parts[1:], " ")
	case len(parts) == 1:
		return "", parts[0]
	default:
		return "", ""
	}
}

// parseDocuments extracts downloadable filings: type badges from span
// elements, the date, a nested description list, and the download link.
func parseDocuments(doc *goquery.Document, pageURL string) []model.LegalDocument {
	section := locateAny(doc, documentTitles, []string{"documents juridiques"})
	if section == nil {
		return nil
	}

	var out []model.LegalDocument
	section.Find("ul li").Each(func(_ int, item *goquery.Selection) {
		document := documentFromItem(item, pageURL)
		if len(document.Types) > 0 || document.Date != "" || document.DownloadURL != "" {
			out = append(out, document)
		}
	})
	return out
}

func documentFromItem(item *goquery.Selection, pageURL string) model.LegalDocument {
	document := model.LegalDocument{}

	item.Find("span").Each(func(_ int, span *goquery.Selection) {
		text := trim(span.Text())
		if text != "" && len(text) > 3 && !dateOnlyExpr.MatchString(text) {
			document.Types = append(document.Types, text)
		}
	})
	if m := dateExpr.FindStringSubmatch(item.Text()); m != nil {
		document.Date = m[1]
	}
	if nested := item.Find("ul").First(); nested.Length() > 0 {
		var descriptions []string
		nested.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := trim(li.Text()); text != "" {
				descriptions = append(descriptions, text)
			}
		})
		document.Description = strings.Join(descriptions, " ; ")
	}
	if link := item.Find(`a[href*="telecharger"], a[href*="download"], a[href*="document"]`).First(); link.Length() > 0 {
		href := link.AttrOr("href", "")
		if href != "" {
			document.DownloadURL = absoluteURL(pageURL, href)
			if m := fileExtExpr.FindStringSubmatch(href); m != nil {
				document.FileExtension = strings.ToLower(m[1])
			}
		}
	}

	return document
}

// parseBodacc extracts gazette announcements. An item joins the result only
// when a kind or date was recognized.
func parseBodacc(doc *goquery.Document, pageURL string) []model.BodaccNotice {
	section := locateAny(doc, bodaccTitles, []string{"bodacc"})
	if section == nil {
		return nil
	}

	var out []model.BodaccNotice
	section.Find("ul li").Each(func(_ int, item *goquery.Selection) {
		notice := bodaccFromItem(item, pageURL)
		if notice.Kind != "" || notice.Date != "" {
			out = append(out, notice)
		}
	})
	return out
}

func bodaccFromItem(item *goquery.Selection, pageURL string) model.BodaccNotice {
	notice := model.BodaccNotice{}
	text := trim(item.Text())

	notice.Kind = noticeKind(text)
	if m := dateExpr.FindStringSubmatch(text); m != nil {
		notice.Date = m[1]
	}
	notice.RCSOffice = firstMatch(rcsOfficeExpr, text)
	notice.DeclaredName = firstMatch(declaredNameExpr, text)
	notice.Capital = firstMatch(capitalExpr, text)
	notice.Address = firstMatch(noticeAddressExpr, text)
	notice.Activity = firstMatch(noticeActivityExpr, text)
	notice.Administration = firstMatch(administrationExpr, text)
	if link := item.Find("a[href]").First(); link.Length() > 0 {
		if href := link.AttrOr("href", ""); href != "" {
			notice.Link = absoluteURL(pageURL, href)
		}
	}

	return notice
}

// noticeKind maps the announcement's leading keyword onto its kind.
func noticeKind(text string) model.NoticeKind {
	m := noticeKindExpr.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	switch strings.ToUpper(deaccent(m[1])) {
	case "CREATION":
		return model.NoticeCreation
	case "MODIFICATION":
		return model.NoticeModification
	case "DISSOLUTION":
		return model.NoticeDissolution
	case "CESSATION":
		return model.NoticeCessation
	case "TRANSFORMATION":
		return model.NoticeTransformation
	default:
		return ""
	}
}
