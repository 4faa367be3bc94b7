package cartography

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_Success(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entreprise/cartographie", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"entreprises":[{"id":"e1","nom_entreprise":"ACME","siren":"123456789"}],"personnes":[]}`))
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, APIToken: "tok", RequestsPerSec: 100})

	payload, err := client.Fetch(context.Background(), "123456789")
	require.NoError(t, err)

	assert.Equal(t, []string{"123456789"}, gotQuery["siren"])
	assert.Equal(t, []string{"tok"}, gotQuery["api_token"])
	assert.Equal(t, []string{"true"}, gotQuery["inclure_sci"])

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Contains(t, body, "entreprises")
}

func TestFetch_WithToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "harvested", r.URL.Query().Get("api_token"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, APIToken: "configured", RequestsPerSec: 100})

	_, err := client.WithToken("harvested").Fetch(context.Background(), "123456789")
	require.NoError(t, err)
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, APIToken: "tok", RequestsPerSec: 100})

	_, err := client.Fetch(context.Background(), "123456789")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestFetch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, APIToken: "tok", RequestsPerSec: 100})

	_, err := client.Fetch(context.Background(), "123456789")
	require.Error(t, err)
}

func TestFetch_EmptySiren(t *testing.T) {
	client := New(Options{BaseURL: "http://unused", APIToken: "tok"})

	_, err := client.Fetch(context.Background(), "")
	require.Error(t, err)
}
