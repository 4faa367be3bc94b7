package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/osintlab/papex/internal/model"
)

// sweepTables is the always-on page-wide table pass: any label/value row
// anywhere on the page may backfill legal info and activity, regardless of
// whether the section-scoped parsers found their sections. Values already
// populated by earlier passes are kept.
func sweepTables(doc *goquery.Document, rec *model.CompanyRecord) {
	activity := rec.Activity
	if activity == nil {
		activity = &model.Activity{}
	}

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(trim(cells.Eq(0).Text()))
		value := trim(cells.Eq(1).Text())
		if label == "" || value == "" {
			return
		}

		switch {
		case strings.Contains(label, "siren") && !strings.Contains(label, "siret"):
			setIfEmpty(rec.LegalInfo, "siren", stripSpaces(value))
		case strings.Contains(label, "siret"):
			setIfEmpty(rec.LegalInfo, "siret", stripSpaces(value))
		case strings.Contains(label, "forme juridique"):
			setIfEmpty(rec.LegalInfo, "forme_juridique", value)
		case strings.Contains(label, "tva"):
			setIfEmpty(rec.LegalInfo, "numero_tva", value)
		case strings.Contains(label, "inscription") && strings.Contains(label, "rcs"):
			setIfEmpty(rec.LegalInfo, "inscription_rcs", value)
		}

		// Activity labels fill only gaps left by the section parser.
		probe := model.Activity{}
		applyActivityLabel(&probe, label, value)
		if probe.Description != "" && activity.Description == "" {
			activity.Description = probe.Description
		}
		if probe.Code != "" && activity.Code == "" {
			activity.Code = probe.Code
		}
		if probe.Domain != "" && activity.Domain == "" {
			activity.Domain = probe.Domain
		}
	})

	if activity.Structured() {
		rec.Activity = activity
	}
}

// sweepLists is the always-on page-wide list pass: every list whose enclosing
// container mentions a section keyword may contribute entries, merged by
// dedup key (SIRET, full name, URL, date+kind).
func sweepLists(doc *goquery.Document, rec *model.CompanyRecord, pageURL string) {
	doc.Find("ul").Each(func(_ int, ul *goquery.Selection) {
		container := ul.Closest("section, div")
		if container.Length() == 0 {
			return
		}
		parentText := strings.ToLower(container.Text())

		ul.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			if strings.Contains(parentText, "etablissement") || strings.Contains(parentText, "établissement") {
				sweepEstablishmentItem(li, rec)
			}
			if strings.Contains(parentText, "dirigeant") {
				sweepDirectorItem(li, rec)
			}
			if strings.Contains(parentText, "document") {
				sweepDocumentItem(li, rec, pageURL)
			}
			if strings.Contains(parentText, "bodacc") {
				sweepBodaccItem(li, rec, pageURL)
			}
		})
	})
}

func sweepEstablishmentItem(li *goquery.Selection, rec *model.CompanyRecord) {
	text := li.Text()
	m := siretExpr.FindStringSubmatch(text)
	if m == nil {
		return
	}
	siret := stripSpaces(m[1])
	if siret == rec.RegistryID {
		return
	}
	for _, existing := range rec.Establishments {
		if existing.SIRET == siret {
			return
		}
	}

	est := establishmentFromText(text)
	est.SIRET = siret
	rec.Establishments = append(rec.Establishments, est)
}

func sweepDirectorItem(li *goquery.Selection, rec *model.CompanyRecord) {
	link := li.Find("a").First()
	if link.Length() == 0 {
		return
	}
	fullName := trim(link.Text())
	if fullName == "" {
		return
	}
	for _, existing := range rec.Directors {
		if existing.FullName == fullName {
			return
		}
	}

	dir := directorFromItem(li)
	dir.FullName = fullName
	rec.Directors = append(rec.Directors, dir)
}

func sweepDocumentItem(li *goquery.Selection, rec *model.CompanyRecord, pageURL string) {
	link := li.Find(`a[href*="telecharger"], a[href*="download"]`).First()
	if link.Length() == 0 {
		return
	}
	href := link.AttrOr("href", "")
	if href == "" {
		return
	}
	docURL := absoluteURL(pageURL, href)
	for _, existing := range rec.LegalDocuments {
		if existing.DownloadURL == docURL {
			return
		}
	}

	document := documentFromItem(li, pageURL)
	document.DownloadURL = docURL
	rec.LegalDocuments = append(rec.LegalDocuments, document)
}

func sweepBodaccItem(li *goquery.Selection, rec *model.CompanyRecord, pageURL string) {
	notice := bodaccFromItem(li, pageURL)
	if notice.Kind == "" {
		return
	}
	for _, existing := range rec.BodaccNotices {
		if existing.Date == notice.Date && existing.Kind == notice.Kind {
			return
		}
	}
	rec.BodaccNotices = append(rec.BodaccNotices, notice)
}

// sweepFallback is the last-resort page-wide pass, run only for fields the
// section parsers and universal sweeps left empty. Entries recovered here
// carry a fallback provenance marker so consumers can tell the confidence
// level apart.
func sweepFallback(doc *goquery.Document, rec *model.CompanyRecord, pageURL string) {
	bodyText := doc.Find("body").Text()

	if len(rec.LegalInfo) == 0 {
		applyLegalInfoPatterns(rec.LegalInfo, bodyText)
	}

	if len(rec.Establishments) == 0 {
		for _, m := range siretExpr.FindAllStringSubmatch(bodyText, -1) {
			siret := stripSpaces(m[1])
			if siret == rec.RegistryID {
				continue
			}
			rec.Establishments = append(rec.Establishments, model.Establishment{
				SIRET:  siret,
				Source: model.SourceFallback,
			})
		}
	}

	if len(rec.Directors) == 0 {
		sweepFallbackDirectors(doc, rec)
	}

	if len(rec.LegalDocuments) == 0 {
		doc.Find(`a[href*="telecharger"], a[href*="download"], a[href*="document"]`).Each(func(_ int, link *goquery.Selection) {
			href := link.AttrOr("href", "")
			if href == "" {
				return
			}
			name := trim(link.Text())
			if name == "" {
				name = link.AttrOr("title", "Document")
			}
			document := model.LegalDocument{
				Name:        name,
				DownloadURL: absoluteURL(pageURL, href),
				Source:      model.SourceFallback,
			}
			if m := fileExtExpr.FindStringSubmatch(href); m != nil {
				document.FileExtension = strings.ToLower(m[1])
			}
			rec.LegalDocuments = append(rec.LegalDocuments, document)
		})
	}

	if len(rec.BodaccNotices) == 0 {
		doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
			href := link.AttrOr("href", "")
			text := trim(link.Text())
			if !strings.Contains(strings.ToLower(text), "bodacc") && !strings.Contains(strings.ToLower(href), "bodacc") {
				return
			}
			rec.BodaccNotices = append(rec.BodaccNotices, model.BodaccNotice{
				Link:        absoluteURL(pageURL, href),
				Description: text,
				Source:      model.SourceFallback,
			})
		})
	}
}

// sweepFallbackDirectors scans the first table on the page for a row whose
// label cell mentions officers and collects the linked names from its value
// cell.
func sweepFallbackDirectors(doc *goquery.Document, rec *model.CompanyRecord) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return
	}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(trim(cells.Eq(0).Text()))
		if !strings.Contains(label, "dirigeant") {
			return
		}
		cells.Eq(1).Find("a").Each(func(_ int, link *goquery.Selection) {
			fullName := trim(link.Text())
			if fullName == "" {
				return
			}
			first, last := splitFullName(fullName)
			rec.Directors = append(rec.Directors, model.Director{
				FullName:  fullName,
				FirstName: first,
				LastName:  last,
				Source:    model.SourceFallback,
			})
		})
	})
}
