// Package model defines the structured record produced by the page extractor
// and the entity/relation graph produced by the transformer.
package model

import (
	"encoding/json"
	"time"
)

// SourceFallback tags entries recovered by the page-wide fallback sweep,
// as opposed to entries parsed out of their own section.
const SourceFallback = "fallback"

// EstablishmentStatus classifies an establishment's operating state.
type EstablishmentStatus string

const (
	StatusActive  EstablishmentStatus = "active"
	StatusClosed  EstablishmentStatus = "closed"
	StatusUnknown EstablishmentStatus = "unknown"
)

// NoticeKind classifies a BODACC gazette announcement.
type NoticeKind string

const (
	NoticeCreation       NoticeKind = "creation"
	NoticeModification   NoticeKind = "modification"
	NoticeDissolution    NoticeKind = "dissolution"
	NoticeCessation      NoticeKind = "cessation"
	NoticeTransformation NoticeKind = "transformation"
)

// Establishment is one SIRET-level location of the company.
type Establishment struct {
	Name       string              `json:"nom,omitempty"`
	SIRET      string              `json:"siret,omitempty"`
	Address    string              `json:"adresse,omitempty"`
	PostalCode string              `json:"code_postal,omitempty"`
	City       string              `json:"ville,omitempty"`
	Status     EstablishmentStatus `json:"statut,omitempty"`
	CreatedOn  string              `json:"date_creation,omitempty"`
	Source     string              `json:"source,omitempty"`
}

// Director is one current or former company officer.
type Director struct {
	FullName   string `json:"nom_complet,omitempty"`
	FirstName  string `json:"prenom,omitempty"`
	LastName   string `json:"nom,omitempty"`
	Role       string `json:"fonction,omitempty"`
	AgeYears   int    `json:"age,omitempty"`
	BirthMonth string `json:"date_naissance,omitempty"` // MM/YYYY
	TermStart  string `json:"date_debut,omitempty"`
	TermEnd    string `json:"date_fin,omitempty"`
	Former     bool   `json:"ancien"`
	Source     string `json:"source,omitempty"`
}

// Shareholder is one entry of the shareholdings section when it is public.
type Shareholder struct {
	Name       string `json:"nom,omitempty"`
	Percentage string `json:"pourcentage,omitempty"`
	Amount     string `json:"montant,omitempty"`
}

// LegalDocument is one downloadable filing listed on the page.
type LegalDocument struct {
	Types         []string `json:"types,omitempty"`
	Name          string   `json:"nom,omitempty"`
	Date          string   `json:"date,omitempty"`
	Description   string   `json:"description,omitempty"`
	DownloadURL   string   `json:"url,omitempty"`
	FileExtension string   `json:"extension,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// BodaccNotice is one official gazette announcement.
type BodaccNotice struct {
	Kind           NoticeKind `json:"type,omitempty"`
	Date           string     `json:"date,omitempty"`
	RCSOffice      string     `json:"rcs,omitempty"`
	DeclaredName   string     `json:"denomination,omitempty"`
	Capital        string     `json:"capital,omitempty"`
	Address        string     `json:"adresse,omitempty"`
	Activity       string     `json:"activite,omitempty"`
	Administration string     `json:"administration,omitempty"`
	Link           string     `json:"lien,omitempty"`
	Description    string     `json:"description,omitempty"`
	Source         string     `json:"source,omitempty"`
}

// RealEstateAsset is one property entry when the section is public.
type RealEstateAsset struct {
	Address    string `json:"adresse,omitempty"`
	Type       string `json:"type,omitempty"`
	Surface    string `json:"surface,omitempty"`
	Value      string `json:"valeur,omitempty"`
	AcquiredOn string `json:"date_acquisition,omitempty"`
}

// InterceptedCall is one raw API exchange observed during the page visit.
// It is a diagnostic trail only; the graph transformer never reads it.
type InterceptedCall struct {
	URL       string          `json:"url"`
	Payload   json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Method    string          `json:"method"`
	Format    string          `json:"format,omitempty"` // "text" when the body was not JSON
}

// CompanyRecord is the extractor's output, one per page visit. JSON field
// names mirror the source site's keys so exports stay interchangeable with
// the original tooling.
type CompanyRecord struct {
	SourceURL      string            `json:"url"`
	RegistryID     string            `json:"siren,omitempty"`
	Name           string            `json:"nom,omitempty"`
	Activity       *Activity         `json:"activite"`
	LegalInfo      map[string]string `json:"informations_juridiques"`
	Establishments []Establishment   `json:"etablissements"`
	Directors      []Director        `json:"dirigeants"`
	Shareholders   Shareholdings     `json:"actionnaires"`
	LegalDocuments []LegalDocument   `json:"documents_juridiques"`
	BodaccNotices  []BodaccNotice    `json:"annonces_bodacc"`

	// Cartography holds the intercepted graph payload verbatim. The extractor
	// never reshapes it; the transformer parses its own view of it.
	Cartography       json.RawMessage `json:"cartographie"`
	CartographySource string          `json:"cartographie_source,omitempty"`
	CartographyAt     *time.Time      `json:"cartographie_timestamp,omitempty"`

	RealEstate       RealEstate        `json:"biens_immobiliers"`
	InterceptedCalls []InterceptedCall `json:"apiCalls"`
	ExtractedAt      time.Time         `json:"extractedAt"`
}

// NewCompanyRecord returns a record with every sequence field initialized so
// that absent sections still serialize as empty arrays.
func NewCompanyRecord(sourceURL string) *CompanyRecord {
	return &CompanyRecord{
		SourceURL:        sourceURL,
		LegalInfo:        map[string]string{},
		Establishments:   []Establishment{},
		Directors:        []Director{},
		Shareholders:     Shareholdings{Holders: []Shareholder{}},
		LegalDocuments:   []LegalDocument{},
		BodaccNotices:    []BodaccNotice{},
		RealEstate:       RealEstate{Assets: []RealEstateAsset{}},
		InterceptedCalls: []InterceptedCall{},
		ExtractedAt:      time.Now().UTC(),
	}
}
