package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/filtering"
)

const (
	PromptPrintReport      = "Print report"
	PromptReportToFile     = "Dump report to file"
	PromptAppendToExcluded = "Append all candidates to exclude file"
)

var screenCmd = &cobra.Command{
	Use:   "screen <directory>",
	Short: "Screen a directory of resumes against a job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		job, err := readJob(cmd)
		if err != nil {
			logger.Fatal("reading the job description", zap.Error(err))
		}

		candidates, err := filtering.LoadDir(args[0], logger)
		if err != nil {
			logger.Fatal("loading resumes", zap.Error(err))
		}

		logger.Info("resumes loaded", zap.String("directory", args[0]), zap.Int("count", candidates.Len()))

		if candidates.Len() == 0 {
			logger.Info("exiting", zap.String("reason", "no resumes found"))
			return
		}

		steps := filtering.Default()
		deps := filtering.Deps{Logger: logger, Job: job}

		if noAI, _ := cmd.Flags().GetBool("no-ai"); noAI {
			filtering.DisableByName(steps, "ai_fit", "disabled by flag")
		} else {
			assistant, err := newAssistant(ctx, config.AI, storedPrefs(logger), logger)
			switch {
			case err == nil:
				deps.Scorer = assistant
			case errors.Is(err, errNotConfigured):
				filtering.DisableByName(steps, "ai_fit", err.Error())
			default:
				logger.Fatal("creating the assistant", zap.Error(err))
			}
		}

		candidates, err = filtering.Run(ctx, config.Screen, deps, steps, candidates)
		if err != nil {
			logger.Fatal("screening failed", zap.Error(err))
		}

		for _, status := range filtering.Describe(steps) {
			logger.Debug("filter status",
				zap.String("name", status.Name),
				zap.Bool("enabled", status.Enabled),
				zap.String("reason", status.Reason),
				zap.Any("details", status.Details),
			)
		}

		candidates.SortByScore()

		if output := viper.GetString("screen.output"); output != "" {
			written, err := candidates.DumpToFile(output)
			if err != nil {
				logger.Fatal("writing report", zap.Error(err))
			}
			logger.Info("report written", zap.String("filename", written))
		}

		if interactive, _ := cmd.Flags().GetBool("interactive"); !interactive {
			printReport(cmd, candidates)
			return
		}

		if err := reviewCandidates(cmd, config.Screen, candidates, logger); err != nil && !errors.Is(err, errExit) {
			logger.Fatal("exiting", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().String(flagJob, "", "job description text")
	screenCmd.Flags().String(flagJobFile, "", "file with the job description (text or docx)")
	screenCmd.Flags().Float64("minimum-score", 0, "drop resumes with a lower local score")
	screenCmd.Flags().StringSlice("required-keyword", nil, "drop resumes missing this keyword (repeatable)")
	screenCmd.Flags().Float64("minimum-fit-score", 0, "drop resumes the model scores lower")
	screenCmd.Flags().StringP("exclude-file", "e", "", "file with already reviewed resumes. Default is unset.")
	screenCmd.Flags().StringP(flagOutput, "o", "", "write the report as json to this file")
	screenCmd.Flags().Bool("no-ai", false, "skip model scoring")
	screenCmd.Flags().Int("concurrency", 1, "parallel model requests")
	screenCmd.Flags().BoolP("interactive", "i", false, "review the result interactively")

	viper.BindPFlag("screen.minimum-score", screenCmd.Flags().Lookup("minimum-score"))
	viper.BindPFlag("screen.required-keywords", screenCmd.Flags().Lookup("required-keyword"))
	viper.BindPFlag("screen.minimum-fit-score", screenCmd.Flags().Lookup("minimum-fit-score"))
	viper.BindPFlag("screen.exclude-file", screenCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("screen.concurrency", screenCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("screen.output", screenCmd.Flags().Lookup(flagOutput))
}

func printReport(cmd *cobra.Command, candidates *filtering.Candidates) {
	out := cmd.OutOrStdout()
	for i, entry := range candidates.Report() {
		fmt.Fprintf(out, "%d. %s\n", i+1, entry)
	}
}

func reviewCandidates(cmd *cobra.Command, cfg *filtering.Config, candidates *filtering.Candidates, logger *zap.Logger) error {
	for {
		items := []string{PromptPrintReport, PromptReportToFile}
		if cfg.ExcludeFile != "" && candidates.Len() != 0 {
			items = append(items, PromptAppendToExcluded)
		}

		prompt := promptui.Select{
			Label: fmt.Sprintf("%d candidates left", candidates.Len()),
			Items: append(items, PromptExit),
		}

		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptPrintReport:
			printReport(cmd, candidates)
		case PromptReportToFile:
			filename, err := candidates.DumpToFile("")
			if err != nil {
				return fmt.Errorf("dump report to file: %w", err)
			}
			logger.Info("dumping report to file", zap.String("filename", filename))
		case PromptAppendToExcluded:
			excluded, err := filtering.GetExcludedFromFile(cfg.ExcludeFile)
			if err != nil {
				return err
			}

			excluded.Append(candidates.ToExcluded(filtering.ExcludeActorUser, "reviewed"))

			if err := excluded.ToFile(cfg.ExcludeFile); err != nil {
				return err
			}

			logger.Info("appended to exclude file", zap.String("filename", cfg.ExcludeFile))

			candidates.Exclude(excluded.Names())
		case PromptExit:
			return errExit
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}
