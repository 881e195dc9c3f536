package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warroom/scoring-service/internal/engine"
	"github.com/warroom/scoring-service/internal/template"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List battle templates and their field weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		th := engine.ThresholdsFrom(cfg.Scoring)

		var (
			reg *template.Registry
			err error
		)
		if cfg.Reference.TemplatesPath != "" {
			reg, err = template.NewRegistryFromFile(cfg.Reference.TemplatesPath, th)
		} else {
			reg, err = template.NewRegistry(th)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, tpl := range reg.All() {
			fmt.Fprintf(out, "Battle %d: %s (weight sum %.0f)\n", tpl.BattleNumber, tpl.Name, tpl.WeightSum())
			for _, field := range tpl.FieldOrder {
				required := ""
				for _, r := range tpl.RequiredFields {
					if r == field {
						required = " (required)"
						break
					}
				}
				ft := tpl.FieldTypes[field]
				if ft == "" {
					ft = "name"
				}
				fmt.Fprintf(out, "  %-30s weight %5.1f  type %s%s\n", field, tpl.FieldWeights[field], ft, required)
			}
			fmt.Fprintln(out, strings.Repeat("-", 60))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
