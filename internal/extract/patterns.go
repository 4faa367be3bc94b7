package extract

import "regexp"

// Registry identifier shapes. SIREN is 9 digits; SIRET is 14 digits rendered
// by the site as "800 332 686 00016".
var (
	sirenURLExpr    = regexp.MustCompile(`entreprise/[^/]+-(\d{9})`)
	sirenURLAltExpr = regexp.MustCompile(`-(\d{9})(?:\?|$)`)
	sirenDigitsExpr = regexp.MustCompile(`^\d{9}$`)
	siretExpr       = regexp.MustCompile(`(\d{3}\s+\d{3}\s+\d{3}\s+\d{5})`)
	dateExpr        = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})`)
	dateOnlyExpr    = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// Legal-info pattern tier. Each pattern is bounded by the next expected label
// or end of text to avoid over-capture.
var (
	sirenTextExpr = regexp.MustCompile(`(?i)SIREN\s*:\s*([\d\s]+)`)
	siretTextExpr = regexp.MustCompile(`(?i)SIRET[^:]*:\s*([\d\s]+)`)
	formeExpr     = regexp.MustCompile(`(?i)Forme juridique\s*:\s*(.+?)(\n|Numéro|Inscription|$)`)
	tvaExpr       = regexp.MustCompile(`(?i)Numéro de TVA\s*:\s*(.+?)(\n|Inscription|$)`)
	rcsExpr       = regexp.MustCompile(`(?i)Inscription au RCS\s*:\s*(.+?)(\n|$)`)
)

// Activity pattern tier.
var (
	activityDescExpr   = regexp.MustCompile(`(?i)Activité principale déclarée\s*:\s*(.+?)(\n|Code|$)`)
	activityCodeExpr   = regexp.MustCompile(`(?i)Code NAF ou APE\s*:\s*(.+?)(\s*\(|Domaine|$)`)
	activityDomainExpr = regexp.MustCompile(`(?i)Domaine d'activité\s*:\s*(.+?)(\n|$)`)
)

// List-item field extraction.
var (
	addressExpr      = regexp.MustCompile(`(?i)Adresse\s*:\s*(.+?)(\n|Date|$)`)
	postalCityExpr   = regexp.MustCompile(`(\d{5})\s+(.+)$`)
	createdOnExpr    = regexp.MustCompile(`(?i)Date de création\s*:\s*(\d{2}/\d{2}/\d{4})`)
	roleExpr         = regexp.MustCompile(`(?i)(Gérant|Président|Directeur|Associé[^,]*)`)
	ageBirthExpr     = regexp.MustCompile(`(\d+)\s+ans\s+-\s+(\d{2}/\d{4})`)
	termSinceExpr    = regexp.MustCompile(`Depuis le\s+(\d{2}/\d{2}/\d{4})`)
	termRangeExpr    = regexp.MustCompile(`Du\s+(\d{2}/\d{2}/\d{4})\s+au\s+(\d{2}/\d{2}/\d{4})`)
	percentageExpr   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)
	amountExpr       = regexp.MustCompile(`(\d+(?:\s+\d{3})*(?:[.,]\d{2})?)\s*€`)
	fileExtExpr      = regexp.MustCompile(`(?i)\.(pdf|docx|doc|xlsx|xls)$`)
	whitespaceExpr   = regexp.MustCompile(`\s+`)
	legalInfoKeyExpr = regexp.MustCompile(`[^a-z0-9_]`)
)

// BODACC notice fields.
var (
	noticeKindExpr     = regexp.MustCompile(`(?i)^(CRÉATION|CREATION|MODIFICATION|DISSOLUTION|CESSATION|TRANSFORMATION)`)
	rcsOfficeExpr      = regexp.MustCompile(`(?i)RCS de\s+(.+?)(\n|Dénomination|$)`)
	declaredNameExpr   = regexp.MustCompile(`(?i)Dénomination\s*:\s*(.+?)(\n|Capital|$)`)
	capitalExpr        = regexp.MustCompile(`(?i)Capital\s*:\s*(.+?)(\n|Adresse|$)`)
	noticeAddressExpr  = regexp.MustCompile(`(?i)Adresse\s*:\s*(.+?)(\n|Activité|$)`)
	noticeActivityExpr = regexp.MustCompile(`(?i)Activité\s*:\s*(.+?)(\n|Administration|$)`)
	administrationExpr = regexp.MustCompile(`(?i)Administration\s*:\s*(.+?)(\n|$)`)
)

// Real-estate asset fields.
var (
	assetAddressExpr  = regexp.MustCompile(`(?i)Adresse\s*:\s*(.+?)(\n|Type|$)`)
	assetTypeExpr     = regexp.MustCompile(`(?i)Type\s*:\s*(.+?)(\n|Surface|$)`)
	assetSurfaceExpr  = regexp.MustCompile(`(?i)Surface\s*:\s*(.+?)(\n|Valeur|$)`)
	assetValueExpr    = regexp.MustCompile(`(?i)Valeur\s*:\s*(.+?)(\n|Date|$)`)
	assetAcquiredExpr = regexp.MustCompile(`(?i)Date d'acquisition\s*:\s*(.+?)(\n|$)`)
)

// firstMatch returns the first capture group of the pattern, trimmed, or "".
func firstMatch(expr *regexp.Regexp, text string) string {
	m := expr.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return trim(m[1])
}
