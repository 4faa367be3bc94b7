package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestLocateSectionAncestorWalk(t *testing.T) {
	doc := docFrom(t, `
<html><body>
<section id="legal">
<div><div>
<h2>Informations juridiques de ACME</h2>
</div></div>
<table><tr><td>SIREN</td><td>123 456 789</td></tr></table>
</section>
</body></html>`)

	sel := locateSection(doc, "Informations juridiques")
	require.NotNil(t, sel)
	assert.Equal(t, "legal", sel.AttrOr("id", ""))
}

func TestLocateSectionClassContainer(t *testing.T) {
	doc := docFrom(t, `
<html><body>
<div class="company-section" id="act">
<h3>Activité de ACME</h3>
<p>Conseil en systèmes informatiques</p>
</div>
</body></html>`)

	sel := locateSection(doc, "Activité")
	require.NotNil(t, sel)
	assert.Equal(t, "act", sel.AttrOr("id", ""))
}

func TestLocateSectionNoMatch(t *testing.T) {
	doc := docFrom(t, `<html><body><h2>Dirigeants</h2></body></html>`)
	assert.Nil(t, locateSection(doc, "Biens immobiliers"))
}

func TestLocateByHeadingKeyword(t *testing.T) {
	doc := docFrom(t, `
<html><body>
<section id="docs">
<h2>Tous les documents juridiques</h2>
<ul><li>Statuts</li></ul>
</section>
</body></html>`)

	sel := locateByHeadingKeyword(doc, "documents juridiques")
	require.NotNil(t, sel)
	assert.Equal(t, "docs", sel.AttrOr("id", ""))
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "numero_de_tva", normalizeLabel("Numéro de TVA"))
	assert.Equal(t, "forme_juridique", normalizeLabel("  Forme juridique "))
	assert.Equal(t, "siren", normalizeLabel("SIREN"))
}

func TestAbsoluteURL(t *testing.T) {
	page := "https://www.pappers.fr/entreprise/acme-123456789"
	assert.Equal(t, "https://www.pappers.fr/document/telecharger/abc.pdf",
		absoluteURL(page, "/document/telecharger/abc.pdf"))
	assert.Equal(t, "https://other.example/x.pdf",
		absoluteURL(page, "https://other.example/x.pdf"))
	assert.Equal(t, "", absoluteURL(page, "  "))
}
