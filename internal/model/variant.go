package model

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Activity describes what the company does. The source site renders it either
// as a structured table (description, NAF/APE code, business domain) or as a
// free-text blob; the structured form is preferred and the raw form is a
// degraded fallback. On the wire it is a bare JSON string or an object,
// matching the site's observed output.
type Activity struct {
	Raw         string
	Description string
	Code        string
	Domain      string
}

// Structured reports whether any structured field is populated.
func (a *Activity) Structured() bool {
	return a.Description != "" || a.Code != "" || a.Domain != ""
}

// IsZero reports whether nothing at all was extracted.
func (a *Activity) IsZero() bool {
	return a.Raw == "" && !a.Structured()
}

type activityJSON struct {
	Description string `json:"description,omitempty"`
	Code        string `json:"code,omitempty"`
	Domain      string `json:"domaine,omitempty"`
}

// MarshalJSON emits a bare string for the unstructured form and an object for
// the structured form.
func (a Activity) MarshalJSON() ([]byte, error) {
	if !(&a).Structured() && a.Raw != "" {
		return json.Marshal(a.Raw)
	}
	return json.Marshal(activityJSON{Description: a.Description, Code: a.Code, Domain: a.Domain})
}

// UnmarshalJSON accepts both wire forms.
func (a *Activity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Activity{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "model: decode activity text")
		}
		*a = Activity{Raw: s}
		return nil
	}
	var obj activityJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return eris.Wrap(err, "model: decode activity object")
	}
	*a = Activity{Description: obj.Description, Code: obj.Code, Domain: obj.Domain}
	return nil
}

// Shareholdings is either a restricted-access notice or a list of holders.
// The restricted form serializes as a tagged object, the public form as an
// array (empty when the section was absent).
type Shareholdings struct {
	Restricted bool
	Note       string
	Holders    []Shareholder
}

type restrictedJSON struct {
	Note      string `json:"note"`
	Available bool   `json:"disponible"`
}

// MarshalJSON emits the tagged object when access was restricted, otherwise
// the holder array.
func (s Shareholdings) MarshalJSON() ([]byte, error) {
	if s.Restricted {
		return json.Marshal(restrictedJSON{Note: s.Note, Available: false})
	}
	if s.Holders == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Holders)
}

// UnmarshalJSON accepts both wire forms.
func (s *Shareholdings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Shareholdings{Holders: []Shareholder{}}
		return nil
	}
	if data[0] == '{' {
		var obj restrictedJSON
		if err := json.Unmarshal(data, &obj); err != nil {
			return eris.Wrap(err, "model: decode shareholdings notice")
		}
		*s = Shareholdings{Restricted: true, Note: obj.Note}
		return nil
	}
	var holders []Shareholder
	if err := json.Unmarshal(data, &holders); err != nil {
		return eris.Wrap(err, "model: decode shareholders")
	}
	*s = Shareholdings{Holders: holders}
	return nil
}

// RealEstate is either a restricted-access notice (optionally carrying a
// sign-up link) or a list of property assets.
type RealEstate struct {
	Restricted bool
	Note       string
	SignupLink string
	Assets     []RealEstateAsset
}

type realEstateRestrictedJSON struct {
	Note       string `json:"note"`
	Available  bool   `json:"disponible"`
	SignupLink string `json:"lien_inscription,omitempty"`
}

// MarshalJSON emits the tagged object when access was restricted, otherwise
// the asset array.
func (r RealEstate) MarshalJSON() ([]byte, error) {
	if r.Restricted {
		return json.Marshal(realEstateRestrictedJSON{Note: r.Note, Available: false, SignupLink: r.SignupLink})
	}
	if r.Assets == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Assets)
}

// UnmarshalJSON accepts both wire forms.
func (r *RealEstate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = RealEstate{Assets: []RealEstateAsset{}}
		return nil
	}
	if data[0] == '{' {
		var obj realEstateRestrictedJSON
		if err := json.Unmarshal(data, &obj); err != nil {
			return eris.Wrap(err, "model: decode real estate notice")
		}
		*r = RealEstate{Restricted: true, Note: obj.Note, SignupLink: obj.SignupLink}
		return nil
	}
	var assets []RealEstateAsset
	if err := json.Unmarshal(data, &assets); err != nil {
		return eris.Wrap(err, "model: decode real estate assets")
	}
	*r = RealEstate{Assets: assets}
	return nil
}
