package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the resume text extracted from a web page or a file",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		resume, _ := mustInputs(cmd.Context(), cmd, args, config, logger)
		fmt.Fprintln(cmd.OutOrStdout(), resume)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	addInputFlags(extractCmd, false)
}
