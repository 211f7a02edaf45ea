package main

import (
	"context"
	"fmt"
	"io"

	"github.com/breachwatch/pwncheck/internal/config"
	"github.com/breachwatch/pwncheck/internal/hibp"
	"github.com/breachwatch/pwncheck/internal/input"
	"github.com/breachwatch/pwncheck/internal/logging"
	"github.com/breachwatch/pwncheck/internal/store"
	"github.com/rs/zerolog/log"
)

// runCheck performs one breach check and writes the human-readable result
// to out. It returns the breach count (zero when not found).
func runCheck(ctx context.Context, out io.Writer, cfg *config.Config, file string, cacheEnabled bool) (int64, error) {
	password, err := readPasswordSource(file)
	if err != nil {
		return 0, err
	}

	ctx, runID := logging.WithRunID(ctx, "")
	log.Debug().Str("run_id", runID).Msg("Starting breach check")

	opts := []hibp.Option{
		hibp.WithBaseURL(cfg.APIURL),
		hibp.WithTimeout(cfg.Timeout),
		hibp.WithUserAgent(cfg.UserAgent),
		hibp.WithPadding(cfg.Padding),
	}

	if cacheEnabled {
		cachePath, err := cfg.ResolveCachePath()
		if err != nil {
			return 0, err
		}
		cache, err := store.NewRangeCache(cachePath, cfg.CacheTTL)
		if err != nil {
			return 0, err
		}
		defer func() {
			if closeErr := cache.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close range cache")
			}
		}()
		opts = append(opts, hibp.WithCache(cache))
	}

	client := hibp.New(opts...)
	count, err := client.CheckPassword(ctx, password)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		fmt.Fprintf(out, "Password appears in known breach data (count: %d). It should not be used.\n", count)
	} else {
		fmt.Fprintln(out, "Password was not found in known breach data.")
	}
	return count, nil
}

// readPasswordSource resolves the password from the --file flag, falling
// back to an interactive prompt. The password never comes from argv.
func readPasswordSource(file string) (string, error) {
	if file == "" {
		return input.PromptPassword()
	}
	return input.ReadPassword(file)
}

// printHash writes the digest split for a password; a debugging aid that
// never touches the network.
func printHash(out io.Writer, password string) error {
	digest := hibp.Digest(password)
	prefix, suffix, err := hibp.Split(digest)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "SHA-1:  %s\nPrefix: %s\nSuffix: %s\n", digest, prefix, suffix)
	return nil
}
