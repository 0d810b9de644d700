package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/ai"
)

var assessCmd = &cobra.Command{
	Use:   "assess [resume text]",
	Short: "Ask the model for a fit score with an explanation",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		resume, job := mustInputs(ctx, cmd, args, config, logger)
		assistant := mustAssistant(ctx, config, logger)

		assessment, err := assistant.Score(ctx, resume, job)
		if err != nil {
			logger.Fatal("model scoring failed", zap.Error(err))
		}

		if !assessment.HasScore {
			logger.Warn("model reply has no score", zap.String("hint", "the raw reply is printed as explanation"))
		}

		if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
			pretty, _ := json.MarshalIndent(assessment, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), ai.Render(assessment.ModelScoreReply))
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary [resume text]",
	Short: "Ask the model for a short candidate summary",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		resume, _ := mustInputs(ctx, cmd, args, config, logger)
		assistant := mustAssistant(ctx, config, logger)

		summary, err := assistant.Summarize(ctx, resume)
		if err != nil {
			logger.Fatal("summary failed", zap.Error(err))
		}

		fmt.Fprintln(cmd.OutOrStdout(), summary)
	},
}

var questionsCmd = &cobra.Command{
	Use:   "questions [resume text]",
	Short: "Ask the model for interview questions",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		resume, job := mustInputs(ctx, cmd, args, config, logger)
		assistant := mustAssistant(ctx, config, logger)

		questions, err := assistant.Questions(ctx, resume, job)
		if err != nil {
			logger.Fatal("generating questions failed", zap.Error(err))
		}

		fmt.Fprintln(cmd.OutOrStdout(), questions)
	},
}

func init() {
	rootCmd.AddCommand(assessCmd, summaryCmd, questionsCmd)

	addInputFlags(assessCmd, true)
	assessCmd.Flags().Bool("output-json", false, "print the assessment as json")

	addInputFlags(summaryCmd, false)
	addInputFlags(questionsCmd, true)
}
