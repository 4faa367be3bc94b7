package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/osintlab/papex/internal/model"
)

const relationWeight = 2

// Transformer turns a CompanyRecord into an entity/relation graph. A fresh
// Transformer is built per record; it is not safe for concurrent use.
type Transformer struct {
	now       int64
	entities  []model.Entity
	relations []model.Relation

	// persons holds every Person entity emitted so far, in emission order,
	// so later names can be matched against all of them.
	persons []personRef

	// companyBySiren maps registry ids to entity ids so cartography
	// companies merge instead of duplicating.
	companyBySiren map[string]string

	seenRelations map[string]struct{}
}

type personRef struct {
	index int // into entities
	name  string
}

// NewTransformer returns a transformer stamped with the current time. All
// entities and relations it emits share one creation timestamp.
func NewTransformer() *Transformer {
	return &Transformer{
		now:            time.Now().UnixMilli(),
		entities:       []model.Entity{},
		relations:      []model.Relation{},
		companyBySiren: map[string]string{},
		seenRelations:  map[string]struct{}{},
	}
}

// Transform builds the graph for one record. A record lacking the name or
// registry id still yields a degraded graph: the main company entity and the
// relations anchored on it are skipped, every other entity is kept. Only a
// nil record is an error.
func (t *Transformer) Transform(rec *model.CompanyRecord) (*model.Graph, error) {
	if rec == nil {
		return nil, eris.New("graph: nil record")
	}

	mainID := t.addMainCompany(rec)
	t.addDirectors(rec, mainID)
	t.addShareholders(rec, mainID)
	t.addEstablishments(rec, mainID)
	t.addDocuments(rec, mainID)
	t.addBodacc(rec, mainID)
	t.addCartography(rec, mainID)

	zap.L().Info("graph built",
		zap.String("siren", rec.RegistryID),
		zap.Int("entities", len(t.entities)),
		zap.Int("relations", len(t.relations)))

	return &model.Graph{Entities: t.entities, Relations: t.relations}, nil
}

// addMainCompany emits the main company entity when the record carries both
// a name and a registry id, and returns "" otherwise so the anchored
// relations are skipped downstream.
func (t *Transformer) addMainCompany(rec *model.CompanyRecord) string {
	if rec.Name == "" || rec.RegistryID == "" {
		return ""
	}

	facts := []string{"SIREN: " + rec.RegistryID}
	if forme := rec.LegalInfo["forme_juridique"]; forme != "" {
		facts = append(facts, "Forme juridique: "+forme)
	}
	if rec.Activity != nil {
		if desc := rec.Activity.Description; desc != "" {
			facts = append(facts, "Activité: "+desc)
		} else if rec.Activity.Raw != "" {
			facts = append(facts, "Activité: "+rec.Activity.Raw)
		}
	}

	id := t.addEntity(model.Entity{
		DisplayValue: fmt.Sprintf("%s (%s)", rec.Name, rec.RegistryID),
		Kind:         model.KindCompany,
		Comments:     strings.Join(facts, "\n"),
		URL:          rec.SourceURL,
	})
	t.companyBySiren[rec.RegistryID] = id
	return id
}

func (t *Transformer) addDirectors(rec *model.CompanyRecord, mainID string) {
	for _, d := range rec.Directors {
		name := strings.TrimSpace(d.FullName)
		if name == "" {
			continue
		}
		personID := t.resolvePerson(name)
		t.addPersonFact(personID, "Fonction", d.Role)
		t.addPersonFact(personID, "Depuis", d.TermStart)
		t.addPersonFact(personID, "Jusqu'à", d.TermEnd)
		if d.BirthMonth != "" {
			t.addPersonFact(personID, "Naissance", d.BirthMonth)
		}
		if d.Former {
			t.addPersonFact(personID, "Statut", "ancien dirigeant")
		}

		label := d.Role
		if label == "" {
			label = "Director"
		}
		t.addRelation(mainID, personID, label, "")
	}
}

func (t *Transformer) addShareholders(rec *model.CompanyRecord, mainID string) {
	if rec.Shareholders.Restricted {
		return
	}
	for _, s := range rec.Shareholders.Holders {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		personID := t.resolvePerson(name)
		t.addPersonFact(personID, "Part", s.Percentage)
		t.addPersonFact(personID, "Montant", s.Amount)
		t.addRelation(mainID, personID, "Shareholder", "")
	}
}

func (t *Transformer) addEstablishments(rec *model.CompanyRecord, mainID string) {
	for _, e := range rec.Establishments {
		value := e.Name
		if value == "" {
			value = "Établissement"
		}
		if e.SIRET != "" {
			value = fmt.Sprintf("%s (%s)", value, e.SIRET)
		} else if e.Address != "" {
			value = fmt.Sprintf("%s (%s)", value, e.Address)
		}

		var facts []string
		if e.SIRET != "" {
			facts = append(facts, "SIRET: "+e.SIRET)
		}
		if e.Address != "" {
			facts = append(facts, "Adresse: "+e.Address)
		}
		if e.Status != "" && e.Status != model.StatusUnknown {
			facts = append(facts, "Statut: "+string(e.Status))
		}
		if e.CreatedOn != "" {
			facts = append(facts, "Création: "+e.CreatedOn)
		}

		estID := t.addEntity(model.Entity{
			DisplayValue: value,
			Kind:         model.KindEstablishment,
			Comments:     strings.Join(facts, "\n"),
		})
		t.addRelation(mainID, estID, "Establishment", "")
	}
}

func (t *Transformer) addDocuments(rec *model.CompanyRecord, mainID string) {
	for _, d := range rec.LegalDocuments {
		value := strings.Join(d.Types, ", ")
		if value == "" {
			value = d.Name
		}
		if value == "" {
			value = "Document juridique"
		}
		if d.Date != "" {
			value = fmt.Sprintf("%s (%s)", value, d.Date)
		}

		var facts []string
		if d.Date != "" {
			facts = append(facts, "Date: "+d.Date)
		}
		if d.Description != "" {
			facts = append(facts, "Description: "+d.Description)
		}
		if d.FileExtension != "" {
			facts = append(facts, "Format: "+d.FileExtension)
		}

		docID := t.addEntity(model.Entity{
			DisplayValue: value,
			Kind:         model.KindDocument,
			Comments:     strings.Join(facts, "\n"),
			URL:          d.DownloadURL,
		})
		t.addRelation(mainID, docID, "Document", "")
	}
}

func (t *Transformer) addBodacc(rec *model.CompanyRecord, mainID string) {
	for _, n := range rec.BodaccNotices {
		value := "BODACC"
		if n.Kind != "" {
			value = "BODACC - " + strings.ToUpper(string(n.Kind))
		}
		if n.Date != "" {
			value = fmt.Sprintf("%s (%s)", value, n.Date)
		}

		var facts []string
		if n.RCSOffice != "" {
			facts = append(facts, "RCS: "+n.RCSOffice)
		}
		if n.DeclaredName != "" {
			facts = append(facts, "Dénomination: "+n.DeclaredName)
		}
		if n.Capital != "" {
			facts = append(facts, "Capital: "+n.Capital)
		}
		if n.Address != "" {
			facts = append(facts, "Adresse: "+n.Address)
		}

		noticeID := t.addEntity(model.Entity{
			DisplayValue: value,
			Kind:         model.KindDocument,
			Comments:     strings.Join(facts, "\n"),
			URL:          n.Link,
		})
		t.addRelation(mainID, noticeID, "BODACC", "")
	}
}

// cartography payload view. Only the fields the transformer reads; ids come
// back as strings or numbers depending on the upstream serializer.
type cartoView struct {
	Companies    []cartoCompany    `json:"entreprises"`
	Persons      []cartoPerson     `json:"personnes"`
	PersonLinks  []json.RawMessage `json:"liens_entreprises_personnes"`
	CompanyLinks []json.RawMessage `json:"liens_entreprises_entreprises"`
}

type cartoCompany struct {
	ID    flexString `json:"id"`
	Name  string     `json:"nom_entreprise"`
	Siren string     `json:"siren"`
}

type cartoPerson struct {
	ID        flexString `json:"id"`
	LastName  string     `json:"nom"`
	FirstName string     `json:"prenom"`
	Level     flexString `json:"niveau"`
	BornOn    string     `json:"date_naissance"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

func (t *Transformer) addCartography(rec *model.CompanyRecord, mainID string) {
	if len(rec.Cartography) == 0 {
		return
	}
	var view cartoView
	if err := json.Unmarshal(rec.Cartography, &view); err != nil {
		zap.L().Warn("graph: cartography payload not parseable, skipping",
			zap.Error(err))
		return
	}

	// Local cartography id to entity id. The requested company is the graph
	// center and carries the local id "e1" when it is not listed itself.
	localCompany := map[string]string{}
	mainLocalID := "e1"

	for _, c := range view.Companies {
		id := string(c.ID)
		if id == "" {
			continue
		}
		if mainID != "" && c.Siren != "" && c.Siren == rec.RegistryID {
			mainLocalID = id
			localCompany[id] = mainID
			t.appendComment(mainID, "Source: cartographie")
			continue
		}
		if existing, ok := t.companyBySiren[c.Siren]; ok && c.Siren != "" {
			localCompany[id] = existing
			t.appendComment(existing, "Source: cartographie")
			continue
		}

		name := c.Name
		if name == "" {
			name = "Entreprise " + c.Siren
		}
		value := name
		if c.Siren != "" {
			value = fmt.Sprintf("%s (%s)", name, c.Siren)
		}
		var facts []string
		if c.Siren != "" {
			facts = append(facts, "SIREN: "+c.Siren)
		}
		facts = append(facts, "Source: cartographie")
		entID := t.addEntity(model.Entity{
			DisplayValue: value,
			Kind:         model.KindCompany,
			Comments:     strings.Join(facts, "\n"),
		})
		localCompany[id] = entID
		if c.Siren != "" {
			t.companyBySiren[c.Siren] = entID
		}
	}

	localPerson := map[string]string{}
	for _, p := range view.Persons {
		id := string(p.ID)
		if id == "" || (p.FirstName == "" && p.LastName == "") {
			continue
		}
		name := strings.TrimSpace(p.FirstName + " " + p.LastName)
		personID := t.resolvePerson(name)
		t.addPersonFact(personID, "Niveau", string(p.Level))
		t.addPersonFact(personID, "Naissance", p.BornOn)
		localPerson[id] = personID
	}

	resolveCompany := func(localID string) (string, bool) {
		if entID, ok := localCompany[localID]; ok {
			return entID, true
		}
		if localID == mainLocalID && mainID != "" {
			return mainID, true
		}
		return "", false
	}

	for _, raw := range view.PersonLinks {
		companyLocal, personLocal, ok := linkSides(raw)
		if !ok {
			continue
		}
		companyEnt, okC := resolveCompany(companyLocal)
		personEnt, okP := localPerson[personLocal]
		if !okC || !okP {
			continue
		}
		t.addRelation(companyEnt, personEnt, "Lien cartographie", "liens_entreprises_personnes")
	}

	for _, raw := range view.CompanyLinks {
		fromLocal, toLocal, ok := linkSides(raw)
		if !ok {
			continue
		}
		fromEnt, okF := resolveCompany(fromLocal)
		toEnt, okT := resolveCompany(toLocal)
		if !okF || !okT || fromEnt == toEnt {
			continue
		}
		t.addRelation(fromEnt, toEnt, "Lien entreprise", "liens_entreprises_entreprises")
	}
}

// linkSides decodes one link entry, a two-element array of local ids.
// Anything else is dropped.
func linkSides(raw json.RawMessage) (string, string, bool) {
	var ids []flexString
	if err := json.Unmarshal(raw, &ids); err != nil || len(ids) != 2 {
		return "", "", false
	}
	a, b := string(ids[0]), string(ids[1])
	if a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}

// resolvePerson returns the entity id for a name, reusing a previously
// emitted Person when SamePerson matches. When the incoming name is fuller
// than the stored display value, the display value is upgraded.
func (t *Transformer) resolvePerson(name string) string {
	for _, ref := range t.persons {
		if !SamePerson(ref.name, name) {
			continue
		}
		ent := &t.entities[ref.index]
		if len(strings.Fields(name)) > len(strings.Fields(ent.DisplayValue)) {
			ent.DisplayValue = name
		}
		return ent.ID
	}
	id := t.addEntity(model.Entity{
		DisplayValue: name,
		Kind:         model.KindPerson,
	})
	t.persons = append(t.persons, personRef{index: len(t.entities) - 1, name: name})
	return id
}

// addPersonFact appends a "Label: value" line to a person's comments unless
// a fact with that label is already recorded. The first observed value for a
// label wins, so merging further mentions of the person stays idempotent.
func (t *Transformer) addPersonFact(entityID, label, value string) {
	if value == "" {
		return
	}
	for i := range t.entities {
		if t.entities[i].ID != entityID {
			continue
		}
		ent := &t.entities[i]
		for _, line := range strings.Split(ent.Comments, "\n") {
			if strings.HasPrefix(line, label+":") {
				return
			}
		}
		if ent.Comments == "" {
			ent.Comments = label + ": " + value
		} else {
			ent.Comments += "\n" + label + ": " + value
		}
		return
	}
}

func (t *Transformer) appendComment(entityID, line string) {
	for i := range t.entities {
		if t.entities[i].ID != entityID {
			continue
		}
		ent := &t.entities[i]
		for _, existing := range strings.Split(ent.Comments, "\n") {
			if existing == line {
				return
			}
		}
		if ent.Comments == "" {
			ent.Comments = line
		} else {
			ent.Comments += "\n" + line
		}
		return
	}
}

func (t *Transformer) addEntity(ent model.Entity) string {
	ent.ID = uuid.NewString()
	ent.CreatedAt = t.now
	t.entities = append(t.entities, ent)
	return ent.ID
}

// addRelation emits a directed edge unless either side is missing (the main
// company may be absent on degraded records) or an identical (origin, target,
// label) triple was already emitted.
func (t *Transformer) addRelation(originID, targetID, label, comments string) {
	if originID == "" || targetID == "" {
		return
	}
	key := originID + "\x00" + targetID + "\x00" + label
	if _, dup := t.seenRelations[key]; dup {
		return
	}
	t.seenRelations[key] = struct{}{}
	t.relations = append(t.relations, model.Relation{
		ID:             uuid.NewString(),
		OriginEntityID: originID,
		TargetEntityID: targetID,
		Directed:       true,
		Label:          label,
		Comments:       comments,
		Weight:         relationWeight,
		Flagged:        false,
		CreatedAt:      t.now,
	})
}
