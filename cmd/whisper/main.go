// Package main is whisper's command-line entrypoint (spec §6).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sudokatie/whisper/config"
	"github.com/sudokatie/whisper/internal/logger"
)

var (
	dataDir    string
	passphrase string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "whisper",
	Short: "Whisper is a decentralized, end-to-end encrypted peer-to-peer messenger",
	Long: `Whisper is a decentralized peer-to-peer messenger.

Identities, contacts, and messages live in a local encrypted vault under
--data-dir; there is no server and no account to register. Use
"whisper init" to create an identity, then "whisper add" to learn about
peers before sending.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(dataDir)
		if err != nil {
			return err
		}
		cfg = loaded

		// flag > env (WHISPER_DATA_DIR, applied by config.Load) > config
		// file > default: only the config file's value overrides the
		// --data-dir flag's own default, never an explicit flag.
		if !cmd.Flags().Changed("data-dir") && cfg.DataDir != "" {
			dataDir = cfg.DataDir
		}

		logger.GetDefaultLogger().SetLevel(logLevelFromString(cfg.Logging.Level))
		return nil
	},
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	home, err := os.UserHomeDir()
	defaultDataDir := ".whisper"
	if err == nil {
		defaultDataDir = home + "/.whisper"
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir, "vault directory")
	rootCmd.PersistentFlags().StringVar(&passphrase, "passphrase", "", "vault passphrase (falls back to WHISPER_PASSPHRASE)")
}

// resolvePassphrase returns the --passphrase flag value, falling back
// to WHISPER_PASSPHRASE (spec §6). The config file intentionally never
// carries a passphrase, so the chain stops at the environment.
func resolvePassphrase() (string, error) {
	if passphrase != "" {
		return passphrase, nil
	}
	if env := os.Getenv("WHISPER_PASSPHRASE"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no passphrase given: pass --passphrase or set WHISPER_PASSPHRASE")
}

func logLevelFromString(level string) logger.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return logger.DebugLevel
	case "WARN":
		return logger.WarnLevel
	case "ERROR":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}
