package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vitrine-app/vitrine/client"
	"github.com/vitrine-app/vitrine/internal/devmode"
	"github.com/vitrine-app/vitrine/internal/logger"
	"github.com/vitrine-app/vitrine/internal/notify"
)

// flags are the persistent options shared by every command.
type flags struct {
	api       string
	key       string
	user      string
	cache     string
	cachePath string
	redisAddr string
	cacheTTL  time.Duration
	timeout   time.Duration
	debug     bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "collectionctl",
		Short:         "CLI client for the collection service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zlog.Logger = logger.Console("collectionctl", f.debug)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.api, "api", "a", "http://localhost:8080", "Collection service base URL")
	pf.StringVarP(&f.key, "key", "k", devmode.APIKey, "API key")
	pf.StringVarP(&f.user, "user", "u", "", "Signed-in user ID")
	pf.StringVar(&f.cache, "cache", "sqlite", "Device cache backend: sqlite, redis or memory")
	pf.StringVar(&f.cachePath, "cache-path", "", "SQLite device cache file (defaults to ~/.vitrine/device.db)")
	pf.StringVar(&f.redisAddr, "redis-addr", "localhost:6379", "Redis address for --cache=redis")
	pf.DurationVar(&f.cacheTTL, "cache-ttl", 30*24*time.Hour, "Redis key TTL (0 keeps keys forever)")
	pf.DurationVar(&f.timeout, "timeout", 30*time.Second, "Overall command timeout")
	pf.BoolVar(&f.debug, "debug", false, "Verbose logging")

	root.AddCommand(
		newCollectionsCmd(f),
		newActiveCmd(f),
		newUseCmd(f),
		newDefaultCmd(f),
		newRefetchCmd(f),
		newCreateCmd(f),
		newGrantCmd(f),
		newRevokeCmd(f),
		newUsersCmd(f),
	)
	return root
}

// newClient builds the service client. Warnings go to stderr.
func (f *flags) newClient(stderr io.Writer) *client.Client {
	warner := notify.WarnerFunc(func(_ context.Context, message string, err error) {
		_, _ = fmt.Fprintf(stderr, "warning: %s: %v\n", message, err)
	})
	return client.New(f.api, f.key, client.WithWarner(warner))
}

func (f *flags) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), f.timeout)
}

func (f *flags) requireUser() error {
	if f.user == "" {
		return fmt.Errorf("--user required")
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
