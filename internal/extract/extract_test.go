package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/papex/internal/model"
	"github.com/osintlab/papex/internal/session"
)

func TestSirenFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.pappers.fr/entreprise/acme-123456789", "123456789"},
		{"https://www.pappers.fr/entreprise/acme-sarl-123456789?onglet=bodacc", "123456789"},
		{"https://www.pappers.fr/recherche?q=acme", ""},
		{"https://example.com/fiche-123456789", "123456789"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sirenFromURL(tc.url), tc.url)
	}
}

func TestDedupEstablishments(t *testing.T) {
	ests := []model.Establishment{
		{SIRET: "80033268600016"},
		{SIRET: "80033268600016"},
		{SIRET: "123456789"},
		{Address: "no siret"},
	}
	out := dedupEstablishments(ests, "123456789")
	require.Len(t, out, 2)
	assert.Equal(t, "80033268600016", out[0].SIRET)
	assert.Equal(t, "no siret", out[1].Address)
}

// A sparse page: the registry id only lives in the URL and the single piece
// of section content is one gazette announcement.
func TestExtractSparsePage(t *testing.T) {
	doc := docFrom(t, `
<html><body>
<h1>ACME</h1>
<section>
<h2>Annonces BODACC de ACME</h2>
<ul>
<li>CRÉATION
01/01/2020
RCS de Paris</li>
</ul>
</section>
</body></html>`)

	rec := New().Extract(doc, pageURL, nil)

	assert.Equal(t, "123456789", rec.RegistryID)
	assert.Equal(t, "ACME", rec.Name)
	require.Len(t, rec.BodaccNotices, 1)
	assert.Equal(t, model.NoticeCreation, rec.BodaccNotices[0].Kind)
	assert.Equal(t, "01/01/2020", rec.BodaccNotices[0].Date)
	assert.Empty(t, rec.Establishments)
	assert.Empty(t, rec.Directors)
	assert.False(t, rec.Shareholders.Restricted)
	assert.Nil(t, rec.Cartography)

	// Empty sections still serialize as arrays.
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"etablissements":[]`)
	assert.Contains(t, string(data), `"dirigeants":[]`)
}

func TestExtractFullPage(t *testing.T) {
	doc := docFrom(t, `
<html><body>
<h1>ACME</h1>
<section>
<h2>Informations juridiques de ACME</h2>
<table>
<tr><td>SIREN</td><td>123 456 789</td></tr>
<tr><td>Forme juridique</td><td>SARL</td></tr>
</table>
</section>
<section>
<h2>Activité de ACME</h2>
<p>Activité principale déclarée : Conseil en systèmes informatiques</p>
</section>
<section>
<h2>Etablissements de ACME</h2>
<ul>
<li>Siège et établissement principal
SIRET : 123 456 789 00016
En activité
Adresse : 1 rue de la Paix 75002 Paris</li>
</ul>
</section>
<section>
<h2>Dirigeants de ACME</h2>
<ul>
<li><a href="/p/rivat">Philippe Rivat</a>
Gérant
Depuis le 01/01/2015</li>
</ul>
</section>
</body></html>`)

	rec := New().Extract(doc, "https://www.pappers.fr/entreprise/acme-123456789", nil)

	assert.Equal(t, "123456789", rec.RegistryID)
	assert.Equal(t, "123456789", rec.LegalInfo["siren"])
	assert.Equal(t, "SARL", rec.LegalInfo["forme_juridique"])
	require.NotNil(t, rec.Activity)
	assert.Equal(t, "Conseil en systèmes informatiques", rec.Activity.Description)
	require.Len(t, rec.Establishments, 1)
	assert.Equal(t, "12345678900016", rec.Establishments[0].SIRET)
	require.Len(t, rec.Directors, 1)
	assert.Equal(t, "Philippe Rivat", rec.Directors[0].FullName)
}

// The registry id comes from the legal-info table when the URL carries none.
func TestExtractRegistryIDFromLegalInfo(t *testing.T) {
	doc := docFrom(t, `
<html><body>
<section>
<h2>Informations juridiques</h2>
<table><tr><td>SIREN</td><td>123 456 789</td></tr></table>
</section>
</body></html>`)

	rec := New().Extract(doc, "https://www.pappers.fr/recherche", nil)
	assert.Equal(t, "123456789", rec.RegistryID)
}

func TestExtractAttachesSessionState(t *testing.T) {
	sess := session.New()
	sess.Observe(
		"https://api.pappers.fr/v2/entreprise/cartographie?api_token=tok&siren=123456789",
		"GET",
		[]byte(`{"entreprises":[{"id":"e2","siren":"987654321"}],"personnes":[]}`),
	)
	sess.Observe("https://api.pappers.fr/v2/suggestions?q=acme", "GET", []byte(`{"resultats":[]}`))

	doc := docFrom(t, `<html><body><h1>ACME</h1></body></html>`)
	rec := New().Extract(doc, pageURL, sess)

	require.NotNil(t, rec.Cartography)
	assert.Contains(t, rec.CartographySource, "cartographie")
	require.NotNil(t, rec.CartographyAt)
	assert.Len(t, rec.InterceptedCalls, 2)
}
