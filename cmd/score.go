package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume text]",
	Short: "Compute the local keyword score of a resume without calling a model",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		resume, job := mustInputs(cmd.Context(), cmd, args, config, logger)
		result := scoring.ComputeScoreDetails(resume, job)

		logger.Debug("local score computed",
			zap.Float64("score", result.Score),
			zap.Strings("matched_keywords", result.MatchedKeywords),
			zap.Int("years", result.Years),
		)

		if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
			pretty, _ := json.MarshalIndent(result, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), scoring.Explain(result))
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	addInputFlags(scoreCmd, true)
	scoreCmd.Flags().Bool("output-json", false, "print the result as json")
}
