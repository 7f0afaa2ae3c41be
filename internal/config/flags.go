package config

import (
	"flag"
)

// parses CLI flags for the migrate subcommand
func ParseMigrateFlags(args []string) Flags {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	down := fs.Bool("down", false, "apply down migrations instead of up")
	dryRun := fs.Bool("dry-run", false, "list migrations without applying them")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{Down: *down, DryRun: *dryRun}
}

// applies command line overrides for the terminal client
func ParseClientFlags(cfg ClientConfig, args []string) ClientConfig {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	endpoint := fs.String("endpoint", cfg.Endpoint, "API endpoint")
	token := fs.String("token", cfg.Token, "bearer token")
	reconcile := fs.Bool("reconcile", cfg.Reconcile, "adopt server like counts after a successful toggle")
	serialize := fs.Bool("serialize-likes", cfg.SerializeLikes, "queue like taps while one is in flight")
	noRefresh := fs.Bool("no-refresh", false, "disable periodic token refresh")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	cfg.Endpoint = *endpoint
	cfg.Token = *token
	cfg.Reconcile = *reconcile
	cfg.SerializeLikes = *serialize
	cfg.DisableRefresher = *noRefresh

	return cfg
}

// parses CLI flags for the embeddings command
func ParseEmbedFlags(args []string) EmbedFlags {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	batch := fs.Int("batch", 32, "characters embedded per provider call")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return EmbedFlags{BatchSize: *batch}
}
