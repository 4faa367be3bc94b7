package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osintlab/papex/internal/graph"
	"github.com/osintlab/papex/internal/model"
)

var (
	graphRecordPath string
	graphOutPath    string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build an entity/relation graph from a company record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := os.ReadFile(graphRecordPath)
		if err != nil {
			return eris.Wrap(err, "read record")
		}

		var rec model.CompanyRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return eris.Wrap(err, "parse record")
		}

		g, err := graph.NewTransformer().Transform(&rec)
		if err != nil {
			return eris.Wrap(err, "transform")
		}

		out, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal graph")
		}
		if err := os.WriteFile(graphOutPath, out, 0o644); err != nil {
			return eris.Wrap(err, "write graph")
		}

		zap.L().Info("graph written",
			zap.String("out", graphOutPath),
			zap.Int("entities", len(g.Entities)),
			zap.Int("relations", len(g.Relations)),
		)
		return nil
	},
}

func init() {
	graphCmd.Flags().StringVar(&graphRecordPath, "record", "", "path to a company record JSON file (required)")
	graphCmd.Flags().StringVarP(&graphOutPath, "out", "o", "graph.json", "output path for the graph")
	_ = graphCmd.MarkFlagRequired("record")
	rootCmd.AddCommand(graphCmd)
}
