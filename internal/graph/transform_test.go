package graph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/papex/internal/model"
)

func baseRecord() *model.CompanyRecord {
	rec := model.NewCompanyRecord("https://www.pappers.fr/entreprise/acme-123456789")
	rec.Name = "ACME"
	rec.RegistryID = "123456789"
	return rec
}

func entitiesOfKind(g *model.Graph, kind model.Kind) []model.Entity {
	var out []model.Entity
	for _, e := range g.Entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestTransformNilRecord(t *testing.T) {
	_, err := NewTransformer().Transform(nil)
	assert.Error(t, err)
}

// A record without a company name still yields a graph: the main company and
// its anchored relations are skipped, the other entities survive.
func TestTransformDegradesWithoutCompanyAnchor(t *testing.T) {
	rec := baseRecord()
	rec.Name = ""
	rec.Directors = []model.Director{{FullName: "Philippe Rivat", Role: "Gérant"}}
	rec.Establishments = []model.Establishment{{SIRET: "12345678900016"}}
	rec.BodaccNotices = []model.BodaccNotice{{Kind: model.NoticeCreation, Date: "01/01/2020"}}

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)

	assert.Empty(t, entitiesOfKind(g, model.KindCompany))
	assert.Len(t, entitiesOfKind(g, model.KindPerson), 1)
	assert.Len(t, entitiesOfKind(g, model.KindEstablishment), 1)
	assert.Len(t, entitiesOfKind(g, model.KindDocument), 1)
	assert.Empty(t, g.Relations)

	person := entitiesOfKind(g, model.KindPerson)[0]
	assert.Contains(t, person.Comments, "Fonction: Gérant")
}

func TestTransformMainCompany(t *testing.T) {
	rec := baseRecord()
	rec.LegalInfo["forme_juridique"] = "SARL"
	rec.Activity = &model.Activity{Description: "Conseil en systèmes informatiques"}

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)

	companies := entitiesOfKind(g, model.KindCompany)
	require.Len(t, companies, 1)
	main := companies[0]
	assert.Equal(t, "ACME (123456789)", main.DisplayValue)
	assert.Equal(t, rec.SourceURL, main.URL)
	assert.Contains(t, main.Comments, "SIREN: 123456789")
	assert.Contains(t, main.Comments, "Forme juridique: SARL")
	assert.Contains(t, main.Comments, "Activité: Conseil en systèmes informatiques")
	assert.NotEmpty(t, main.ID)
	assert.NotZero(t, main.CreatedAt)
}

func TestTransformDirectorAndCartographyNameMerge(t *testing.T) {
	rec := baseRecord()
	rec.Directors = []model.Director{{
		FullName:  "Philippe Rivat",
		FirstName: "Philippe",
		LastName:  "Rivat",
		Role:      "Gérant",
		TermStart: "01/01/2015",
	}}
	rec.Cartography = json.RawMessage(`{
		"personnes": [{"id": "p1", "prenom": "Rivat", "nom": "Philippe", "niveau": 1}],
		"liens_entreprises_personnes": [["e1", "p1"]]
	}`)

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)

	persons := entitiesOfKind(g, model.KindPerson)
	require.Len(t, persons, 1, "reversed cartography name must merge into the director")
	person := persons[0]
	assert.Equal(t, "Philippe Rivat", person.DisplayValue)
	assert.Contains(t, person.Comments, "Fonction: Gérant")
	assert.Contains(t, person.Comments, "Depuis: 01/01/2015")
	assert.Contains(t, person.Comments, "Niveau: 1")

	require.Len(t, g.Relations, 2)
	labels := []string{g.Relations[0].Label, g.Relations[1].Label}
	assert.Contains(t, labels, "Gérant")
	assert.Contains(t, labels, "Lien cartographie")
	for _, rel := range g.Relations {
		assert.True(t, rel.Directed)
		assert.Equal(t, 2, rel.Weight)
		assert.False(t, rel.Flagged)
	}
}

func TestTransformCartographyMainCompanySubstitution(t *testing.T) {
	// "e1" is not listed in entreprises; it is the requested company's own
	// local id and must resolve to the main entity.
	rec := baseRecord()
	rec.Cartography = json.RawMessage(`{
		"personnes": [{"id": "p1", "prenom": "Jean", "nom": "Dupont"}],
		"liens_entreprises_personnes": [["e1", "p1"]]
	}`)

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)

	companies := entitiesOfKind(g, model.KindCompany)
	require.Len(t, companies, 1)
	require.Len(t, g.Relations, 1)
	assert.Equal(t, companies[0].ID, g.Relations[0].OriginEntityID)
}

func TestTransformCartographyCompanyDedup(t *testing.T) {
	rec := baseRecord()
	rec.Cartography = json.RawMessage(`{
		"entreprises": [
			{"id": "e1", "siren": "123456789", "nom_entreprise": "ACME"},
			{"id": "e2", "siren": "987654321", "nom_entreprise": "HOLDING SARL"}
		],
		"liens_entreprises_entreprises": [["e1", "e2"]]
	}`)

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)

	companies := entitiesOfKind(g, model.KindCompany)
	require.Len(t, companies, 2, "the main company must merge, not duplicate")

	var main, other model.Entity
	for _, c := range companies {
		if c.DisplayValue == "ACME (123456789)" {
			main = c
		} else {
			other = c
		}
	}
	assert.Contains(t, main.Comments, "Source: cartographie")
	assert.Equal(t, "HOLDING SARL (987654321)", other.DisplayValue)
	assert.Contains(t, other.Comments, "SIREN: 987654321")

	require.Len(t, g.Relations, 1)
	assert.Equal(t, main.ID, g.Relations[0].OriginEntityID)
	assert.Equal(t, other.ID, g.Relations[0].TargetEntityID)
	assert.Equal(t, "Lien entreprise", g.Relations[0].Label)
}

func TestTransformCartographySkipsBadLinks(t *testing.T) {
	rec := baseRecord()
	rec.Cartography = json.RawMessage(`{
		"personnes": [{"id": "p1", "prenom": "Jean", "nom": "Dupont"}],
		"liens_entreprises_personnes": [
			["e1"],
			["e1", "p1", "extra"],
			"not-an-array",
			["e9", "p9"],
			["e1", "p1"]
		]
	}`)

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)
	require.Len(t, g.Relations, 1, "only the well-formed resolvable link survives")
}

func TestTransformUnparseableCartography(t *testing.T) {
	rec := baseRecord()
	rec.Cartography = json.RawMessage(`"not an object"`)

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)
	assert.Len(t, g.Entities, 1)
	assert.Empty(t, g.Relations)
}

// One label gets one fact: a second mention of the same person with a
// different role must not stack a second "Fonction" line.
func TestTransformFirstRoleFactWins(t *testing.T) {
	rec := baseRecord()
	rec.Directors = []model.Director{
		{FullName: "Jean Dupont", Role: "Gérant"},
		{FullName: "Dupont Jean", Role: "Président"},
	}

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)

	persons := entitiesOfKind(g, model.KindPerson)
	require.Len(t, persons, 1)
	assert.Equal(t, 1, strings.Count(persons[0].Comments, "Fonction:"))
	assert.Contains(t, persons[0].Comments, "Fonction: Gérant")

	// The role still labels each relation.
	require.Len(t, g.Relations, 2)
	labels := []string{g.Relations[0].Label, g.Relations[1].Label}
	assert.Contains(t, labels, "Gérant")
	assert.Contains(t, labels, "Président")
}

func TestTransformRelationDedup(t *testing.T) {
	rec := baseRecord()
	rec.Directors = []model.Director{
		{FullName: "Jean Dupont", Role: "Gérant"},
		{FullName: "Dupont Jean", Role: "Gérant"},
	}

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)
	assert.Len(t, entitiesOfKind(g, model.KindPerson), 1)
	assert.Len(t, g.Relations, 1)
}

func TestTransformEstablishmentsAndDocuments(t *testing.T) {
	rec := baseRecord()
	rec.Establishments = []model.Establishment{
		{SIRET: "12345678900016", Address: "1 rue de la Paix, 75002 Paris", Status: model.StatusActive},
		{SIRET: "12345678900024", Status: model.StatusClosed},
	}
	rec.LegalDocuments = []model.LegalDocument{{
		Types:       []string{"Statuts"},
		Date:        "12/05/2018",
		DownloadURL: "https://www.pappers.fr/document/telecharger/abc.pdf",
	}}
	rec.BodaccNotices = []model.BodaccNotice{{
		Kind: model.NoticeCreation,
		Date: "01/01/2020",
	}}

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)

	assert.Len(t, entitiesOfKind(g, model.KindEstablishment), 2)
	docs := entitiesOfKind(g, model.KindDocument)
	require.Len(t, docs, 2)
	assert.Len(t, g.Relations, 4)

	var notice model.Entity
	for _, d := range docs {
		if d.URL == "" {
			notice = d
		}
	}
	assert.Equal(t, "BODACC - CREATION (01/01/2020)", notice.DisplayValue)
}

func TestTransformShareholderUpgradesDisplayName(t *testing.T) {
	rec := baseRecord()
	rec.Directors = []model.Director{{FullName: "Rivat Philippe", Role: "Gérant"}}
	rec.Shareholders = model.Shareholdings{Holders: []model.Shareholder{
		{Name: "Philippe Rivat", Percentage: "100%"},
	}}

	g, err := NewTransformer().Transform(rec)
	require.NoError(t, err)

	persons := entitiesOfKind(g, model.KindPerson)
	require.Len(t, persons, 1)
	assert.Contains(t, persons[0].Comments, "Part: 100%")
	assert.Len(t, g.Relations, 2)
}
