package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/prefs"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change stored preferences",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print stored preferences (the api key is masked)",
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger()

		store, err := openPrefs(logger)
		if err != nil {
			logger.Fatal("opening preferences", zap.Error(err))
		}

		p := store.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "file:      %s\n", store.Path())
		fmt.Fprintf(out, "%-10s %s\n", prefs.KeyAPIURL+":", p.APIURL)
		fmt.Fprintf(out, "%-10s %s\n", prefs.KeyAPIKey+":", maskSecret(p.APIKey))
		fmt.Fprintf(out, "%-10s %s\n", prefs.KeyModelID+":", p.ModelID)
		fmt.Fprintf(out, "%-10s %s\n", prefs.KeyTheme+":", p.Theme)
		fmt.Fprintf(out, "%-10s %t\n", prefs.KeyPinned+":", p.Pinned)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the model api settings and ui preferences",
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger()

		store, err := openPrefs(logger)
		if err != nil {
			logger.Fatal("opening preferences", zap.Error(err))
		}

		current := store.Get()
		flags := cmd.Flags()

		if flags.Changed("api-key") || flags.Changed("api-url") || flags.Changed("model") {
			apiKey, apiURL, model := current.APIKey, current.APIURL, current.ModelID
			if flags.Changed("api-key") {
				apiKey, _ = flags.GetString("api-key")
			}
			if flags.Changed("api-url") {
				apiURL, _ = flags.GetString("api-url")
			}
			if flags.Changed("model") {
				model, _ = flags.GetString("model")
			}
			store.SetAPI(apiKey, apiURL, model)
		}

		if flags.Changed("theme") {
			theme, _ := flags.GetString("theme")
			store.SetTheme(strings.ToLower(strings.TrimSpace(theme)))
		}

		if flags.Changed("pinned") {
			pinned, _ := flags.GetBool("pinned")
			store.SetPinned(pinned)
		}

		if err := store.Save(); err != nil {
			logger.Fatal("saving preferences", zap.Error(err))
		}

		logger.Info("preferences saved", zap.String("path", store.Path()))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)

	configSetCmd.Flags().String("api-key", "", "model api key")
	configSetCmd.Flags().String("api-url", "", "OpenAI-compatible chat completions url")
	configSetCmd.Flags().String("model", prefs.DefaultModelID, "model id")
	configSetCmd.Flags().String("theme", prefs.ThemeDark, "panel theme: dark or light")
	configSetCmd.Flags().Bool("pinned", false, "keep the panel open after an action")
}

func maskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return strings.Repeat("*", len(secret))
	default:
		return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
	}
}
