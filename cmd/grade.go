package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/warroom/scoring-service/internal/model"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <submission.json>",
	Short: "Grade a single submission from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read submission %s", args[0])
		}

		var sub model.Submission
		if err := json.Unmarshal(data, &sub); err != nil {
			return eris.Wrap(err, "parse submission")
		}
		if !sub.Team.Valid() {
			return eris.Errorf("team must be Alpha or Delta, got %q", sub.Team)
		}

		eng, _, _, err := buildEngine()
		if err != nil {
			return err
		}

		result, err := eng.Grade(&sub)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "encode result")
	},
}

func init() {
	rootCmd.AddCommand(gradeCmd)
}
