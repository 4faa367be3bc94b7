// Package extract turns a loaded registry page into a structured company
// record. Parsing is defensive throughout: the target site's markup is not
// stable, so every field is attempted through a chain of strategies and a
// missing section is never an error.
package extract

import (
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/osintlab/papex/internal/model"
	"github.com/osintlab/papex/internal/session"
)

const nameSelector = `h1, .nom-entreprise, [data-testid="nom-entreprise"], [class*="nom-entreprise"]`

// Extractor produces CompanyRecords from parsed documents.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract builds the record for one page visit. The session supplies the
// intercepted-call trail and the cartography payload; it is read, never
// mutated. Extraction itself cannot fail: absent sections simply leave their
// fields empty.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string, sess *session.Session) *model.CompanyRecord {
	rec := model.NewCompanyRecord(pageURL)

	rec.RegistryID = sirenFromURL(pageURL)
	rec.Name = trim(doc.Find(nameSelector).First().Text())

	rec.Activity = parseActivity(doc)
	parseLegalInfo(doc, rec.LegalInfo)

	// SIREN recovered from the legal-info table beats nothing at all; the
	// establishment passes need it to exclude the company's own number.
	if rec.RegistryID == "" {
		if siren, ok := rec.LegalInfo["siren"]; ok && sirenDigitsExpr.MatchString(siren) {
			rec.RegistryID = siren
		}
	}

	if ests := parseEstablishments(doc); ests != nil {
		rec.Establishments = dedupEstablishments(ests, rec.RegistryID)
	}
	if dirs := parseDirectors(doc); dirs != nil {
		rec.Directors = dirs
	}
	rec.Shareholders = parseShareholders(doc)
	if docs := parseDocuments(doc, pageURL); docs != nil {
		rec.LegalDocuments = docs
	}
	if notices := parseBodacc(doc, pageURL); notices != nil {
		rec.BodaccNotices = notices
	}
	rec.RealEstate = parseRealEstate(doc, pageURL)

	// Always-on page-wide passes, then last-resort fallbacks for whatever
	// is still empty.
	sweepTables(doc, rec)
	sweepLists(doc, rec, pageURL)
	sweepFallback(doc, rec, pageURL)

	if sess != nil {
		if payload, sourceURL, at, ok := sess.Cartography(); ok {
			rec.Cartography = payload
			rec.CartographySource = sourceURL
			capturedAt := at
			rec.CartographyAt = &capturedAt
		}
		rec.InterceptedCalls = sess.Calls()
	}

	zap.L().Info("extract: record built",
		zap.String("siren", rec.RegistryID),
		zap.Int("establishments", len(rec.Establishments)),
		zap.Int("directors", len(rec.Directors)),
		zap.Int("documents", len(rec.LegalDocuments)),
		zap.Int("bodacc", len(rec.BodaccNotices)),
		zap.Bool("cartography", rec.Cartography != nil),
		zap.Int("intercepted_calls", len(rec.InterceptedCalls)),
	)

	return rec
}

// sirenFromURL pulls the 9-digit registry id out of the page URL, trying the
// canonical /entreprise/name-123456789 shape first.
func sirenFromURL(pageURL string) string {
	if m := sirenURLExpr.FindStringSubmatch(pageURL); m != nil {
		return m[1]
	}
	if m := sirenURLAltExpr.FindStringSubmatch(pageURL); m != nil {
		return m[1]
	}
	return ""
}

// dedupEstablishments drops repeated SIRETs (best effort, entries without a
// SIRET are kept as-is) and any entry claiming the company's own number.
func dedupEstablishments(ests []model.Establishment, registryID string) []model.Establishment {
	seen := map[string]struct{}{}
	out := make([]model.Establishment, 0, len(ests))
	for _, est := range ests {
		if est.SIRET != "" {
			if est.SIRET == registryID {
				continue
			}
			if _, dup := seen[est.SIRET]; dup {
				continue
			}
			seen[est.SIRET] = struct{}{}
		}
		out = append(out, est)
	}
	return out
}
