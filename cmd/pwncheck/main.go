package main

import (
	"fmt"
	"os"

	"github.com/breachwatch/pwncheck/internal/config"
	"github.com/breachwatch/pwncheck/internal/errors"
	"github.com/breachwatch/pwncheck/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes: 0 password not found, 2 password found in breach data,
// 1 any error. The non-zero "found" code lets scripts reject breached
// passwords directly.
const (
	exitOK       = 0
	exitError    = 1
	exitBreached = 2
)

var (
	passwordFile string
	usePadding   bool
	useCache     bool

	foundInBreach bool
)

var rootCmd = &cobra.Command{
	Use:   "pwncheck",
	Short: "pwncheck - check passwords against known breach data",
	Long: `pwncheck checks whether a password appears in known data breaches using
the Pwned Passwords k-anonymity API. The password is hashed locally and only
the first 5 characters of the hash are ever sent over the network.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckCommand(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pwncheck %s\n", Version)
		if BuildTime != "unknown" {
			fmt.Printf("Built: %s\n", BuildTime)
		}
		if GitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", GitCommit)
		}
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print the digest, prefix, and suffix for a password without querying the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPasswordSource(passwordFile)
		if err != nil {
			return err
		}
		return printHash(cmd.OutOrStdout(), password)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&passwordFile, "file", "f", "",
		"read the password from this file (use - for stdin); prompts when omitted")
	rootCmd.Flags().BoolVar(&usePadding, "padding", false,
		"request padded API responses")
	rootCmd.Flags().BoolVar(&useCache, "cache", false,
		"cache range responses in a local SQLite database")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(hashCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	logging.Init(logging.Config{
		Format:    "auto",
		Level:     "info",
		Component: "pwncheck",
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	if foundInBreach {
		return exitBreached
	}
	return exitOK
}

func runCheckCommand(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	// Re-initialize logging with configuration-driven settings.
	logging.Init(logging.Config{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		Component: "pwncheck",
	})

	if cmd.Flags().Changed("padding") {
		cfg.Padding = usePadding
	}

	count, err := runCheck(cmd.Context(), cmd.OutOrStdout(), cfg, passwordFile, useCache)
	if err != nil {
		if code, ok := errors.APIStatusCode(err); ok {
			log.Error().Int("status", code).Msg("Breach API request failed")
		}
		return err
	}
	foundInBreach = count > 0
	return nil
}
