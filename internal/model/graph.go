package model

// Kind classifies a graph entity. The four values are opaque category tags
// for the downstream link-analysis import, not foreign keys.
type Kind string

const (
	KindCompany       Kind = "Company"
	KindPerson        Kind = "Person"
	KindDocument      Kind = "Document"
	KindEstablishment Kind = "Establishment"
)

// Entity is one node of the exported graph. ID uniqueness is structural
// (random UUID); semantic identity is the transformer's job.
type Entity struct {
	ID           string `json:"id"`
	DisplayValue string `json:"value"`
	Kind         Kind   `json:"kind"`
	CreatedAt    int64  `json:"creationDate"`
	Comments     string `json:"comments,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Relation is one directed edge of the exported graph.
type Relation struct {
	ID             string `json:"id"`
	OriginEntityID string `json:"originId"`
	TargetEntityID string `json:"targetId"`
	Directed       bool   `json:"directed"`
	Label          string `json:"label"`
	Comments       string `json:"comments,omitempty"`
	Weight         int    `json:"weight"`
	Flagged        bool   `json:"flagged"`
	CreatedAt      int64  `json:"creationDate"`
}

// Graph is the transformer's output: a build-once snapshot of entities and
// relations, ready for JSON export.
type Graph struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}
