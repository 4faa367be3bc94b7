package main

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osintlab/papex/internal/config"
	"github.com/osintlab/papex/internal/extract"
	"github.com/osintlab/papex/internal/session"
	"github.com/osintlab/papex/pkg/cartography"
)

var (
	extractHTMLPath  string
	extractPageURL   string
	extractCallsPath string
	extractOutPath   string
	extractWait      time.Duration
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a structured company record from a saved page",
	Long:  "Parses a saved registry page (plus an optional NDJSON trail of intercepted API calls) into a company record. When no cartography payload was intercepted, one replay against the cartography API is attempted using the harvested or configured token.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		f, err := os.Open(extractHTMLPath)
		if err != nil {
			return eris.Wrap(err, "open html")
		}
		defer f.Close()

		doc, err := goquery.NewDocumentFromReader(f)
		if err != nil {
			return eris.Wrap(err, "parse html")
		}

		sess := session.New()
		if extractCallsPath != "" {
			if err := loadCalls(sess, extractCallsPath); err != nil {
				return eris.Wrap(err, "load calls")
			}
		}

		rec := extract.New().Extract(doc, extractPageURL, sess)

		// No cartography in the trail: wait out the ceiling, then replay once.
		if rec.Cartography == nil && rec.RegistryID != "" {
			ceiling := cfg.Extract.WaitCeiling()
			if extractWait > 0 {
				ceiling = extractWait
			}
			client := cartography.New(cartography.Options{
				BaseURL:        cfg.Cartography.BaseURL,
				APIToken:       cfg.Cartography.APIToken,
				Timeout:        cfg.Cartography.Timeout(),
				RequestsPerSec: cfg.Cartography.RequestsPerSec,
			})
			if sess.EnsureCartography(ctx, client, rec.RegistryID, ceiling, cfg.Extract.PollInterval()) {
				if payload, sourceURL, at, ok := sess.Cartography(); ok {
					rec.Cartography = payload
					rec.CartographySource = sourceURL
					capturedAt := at
					rec.CartographyAt = &capturedAt
				}
			}
		}

		out, err := exportRecord(rec, cfg.Export)
		if err != nil {
			return eris.Wrap(err, "export record")
		}
		if err := os.WriteFile(extractOutPath, out, 0o644); err != nil {
			return eris.Wrap(err, "write record")
		}

		zap.L().Info("extract complete",
			zap.String("siren", rec.RegistryID),
			zap.String("out", extractOutPath),
		)
		return nil
	},
}

// interceptedLine is one NDJSON line of the call trail: the URL, the HTTP
// method and the raw response body as a string.
type interceptedLine struct {
	URL    string `json:"url"`
	Method string `json:"method"`
	Body   string `json:"body"`
}

func loadCalls(sess *session.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrap(err, "open")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var call interceptedLine
		if err := json.Unmarshal(line, &call); err != nil {
			zap.L().Warn("skipping malformed call line",
				zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		sess.Observe(call.URL, call.Method, []byte(call.Body))
	}
	return eris.Wrap(scanner.Err(), "scan")
}

// exportRecord serializes the record, dropping the top-level sections the
// export configuration excludes. Extraction itself always computes every
// section; exclusion is presentation only.
func exportRecord(rec any, export config.ExportConfig) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, eris.Wrap(err, "marshal")
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, eris.Wrap(err, "reshape")
	}
	for name := range sections {
		if !export.Include(name) {
			delete(sections, name)
		}
	}
	return json.MarshalIndent(sections, "", "  ")
}

func init() {
	extractCmd.Flags().StringVar(&extractHTMLPath, "html", "", "path to the saved page HTML (required)")
	extractCmd.Flags().StringVar(&extractPageURL, "url", "", "URL the page was saved from (required)")
	extractCmd.Flags().StringVar(&extractCallsPath, "calls", "", "path to an NDJSON trail of intercepted API calls")
	extractCmd.Flags().StringVarP(&extractOutPath, "out", "o", "record.json", "output path for the company record")
	extractCmd.Flags().DurationVar(&extractWait, "wait", 0, "override the cartography wait ceiling (default from config)")
	_ = extractCmd.MarkFlagRequired("html")
	_ = extractCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(extractCmd)
}
