package session

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/osintlab/papex/internal/model"
)

// apiKeywords qualify a URL for recording in the call trail.
var apiKeywords = []string{"api", "geocod", "map", "coordinate", "geoloc", "location"}

var tokenExpr = regexp.MustCompile(`api_token=([^&]+)`)

// Observe classifies one intercepted exchange. Qualifying calls are appended
// to the trail; the first payload exhibiting the cartography shape is stored
// verbatim as the session's cartography payload. Non-JSON bodies are kept as
// text; an empty body drops the call silently.
func (s *Session) Observe(url, method string, body []byte) {
	if !recordableURL(url) {
		return
	}
	if method == "" {
		method = "GET"
	}

	call := model.InterceptedCall{
		URL:       url,
		Method:    method,
		Timestamp: time.Now().UTC(),
	}

	if json.Valid(body) && len(body) > 0 {
		call.Payload = json.RawMessage(append([]byte(nil), body...))
	} else {
		// Text fallback: keep the body as a JSON string. Nothing captured
		// at all means the call is dropped.
		text := strings.TrimSpace(string(body))
		if text == "" {
			return
		}
		quoted, err := json.Marshal(text)
		if err != nil {
			return
		}
		call.Payload = quoted
		call.Format = "text"
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	if s.apiToken == "" {
		if m := tokenExpr.FindStringSubmatch(url); m != nil {
			s.apiToken = m[1]
			zap.L().Debug("session: api token harvested from intercepted call")
		}
	}
	s.mu.Unlock()

	// Text captures are trail-only; the cartography payload must be JSON.
	if call.Format == "text" {
		return
	}
	if isCartographyPayload(url, call.Payload) {
		s.setCartography(call.Payload, url)
	}
}

func recordableURL(url string) bool {
	lower := strings.ToLower(url)
	for _, kw := range apiKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return cartographyURL(url)
}

// cartographyURL matches the shapes the cartography endpoint is called with.
func cartographyURL(url string) bool {
	lower := strings.ToLower(url)
	if strings.Contains(lower, "/v2/entreprise/cartographie") {
		return true
	}
	return strings.Contains(lower, "cartographie") && strings.Contains(lower, "siren=")
}

// cartographyShape is the structural probe applied to response bodies.
type cartographyShape struct {
	Entreprises   []json.RawMessage `json:"entreprises"`
	Personnes     []json.RawMessage `json:"personnes"`
	Links         []json.RawMessage `json:"liens_entreprises_personnes"`
	Latitude      *float64          `json:"latitude"`
	Longitude     *float64          `json:"longitude"`
	Lat           *float64          `json:"lat"`
	Lng           *float64          `json:"lng"`
	Coordinates   []json.RawMessage `json:"coordinates"`
	Etablissement json.RawMessage   `json:"etablissement"`
	Etabs         []json.RawMessage `json:"etablissements"`
	Resultats     []json.RawMessage `json:"resultats"`
}

// isCartographyPayload decides whether a body qualifies as the cartography
// payload, independent of URL shape: a company/person graph structure,
// geographic coordinates, or an establishment listing all qualify.
func isCartographyPayload(url string, body json.RawMessage) bool {
	lower := strings.ToLower(url)
	if cartographyURL(url) ||
		strings.Contains(lower, "cartographie") ||
		strings.Contains(lower, "geocod") ||
		strings.Contains(lower, "map") {
		return true
	}

	var probe cartographyShape
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}

	if probe.Entreprises != nil && (probe.Personnes != nil || probe.Links != nil) {
		return true
	}
	if (probe.Latitude != nil && probe.Longitude != nil) || (probe.Lat != nil && probe.Lng != nil) {
		return true
	}
	if probe.Coordinates != nil || probe.Etabs != nil || probe.Resultats != nil {
		return true
	}
	if len(probe.Etablissement) > 0 && probe.Etablissement[0] == '{' {
		return true
	}
	return false
}
