package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/papex/internal/config"
	"github.com/osintlab/papex/internal/model"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"extract", "graph"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "papex", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestExtractCommand_Flags(t *testing.T) {
	for _, name := range []string{"html", "url", "calls", "out", "wait"} {
		require.NotNil(t, extractCmd.Flags().Lookup(name), "extract command should have --%s flag", name)
	}
	assert.Equal(t, "record.json", extractCmd.Flags().Lookup("out").DefValue)
}

func TestGraphCommand_Flags(t *testing.T) {
	require.NotNil(t, graphCmd.Flags().Lookup("record"))
	assert.Equal(t, "graph.json", graphCmd.Flags().Lookup("out").DefValue)
}

func TestExportRecord_FiltersSections(t *testing.T) {
	rec := model.NewCompanyRecord("https://www.pappers.fr/entreprise/acme-123456789")
	rec.RegistryID = "123456789"

	export := config.ExportConfig{Sections: map[string]bool{
		"apiCalls":        false,
		"annonces_bodacc": false,
	}}
	out, err := exportRecord(rec, export)
	require.NoError(t, err)

	assert.Contains(t, string(out), `"siren"`)
	assert.Contains(t, string(out), `"etablissements"`)
	assert.NotContains(t, string(out), `"apiCalls"`)
	assert.NotContains(t, string(out), `"annonces_bodacc"`)
}

func TestExportRecord_DefaultsToEverything(t *testing.T) {
	rec := model.NewCompanyRecord("https://www.pappers.fr/entreprise/acme-123456789")

	out, err := exportRecord(rec, config.ExportConfig{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"apiCalls"`)
	assert.Contains(t, string(out), `"dirigeants"`)
}
