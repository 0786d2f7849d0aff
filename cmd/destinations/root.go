package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/illmade-knight/go-destinations/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds per-invocation state shared by the sub-commands.
type cli struct {
	httpClient *http.Client
	stderr     io.Writer
	v          *viper.Viper
	configFile string
	envFile    string
	app        *app
}

// run executes one CLI invocation.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, httpClient *http.Client) error {
	c := &cli{httpClient: httpClient, stderr: stderr, v: viper.New()}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		if closeErr := c.app.close(); closeErr != nil {
			c.app.logger.Error().Err(closeErr).Msg("Shutdown was not clean.")
			if err == nil {
				err = closeErr
			}
		}
	}
	return err
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "destinations",
		Short:         "Travel destination data: cities, places, countries and images",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "YAML config file (default ./destinations.yaml if present)")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file with provider credentials")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("cache-backend", config.BackendSQLite, "cache backend (memory, sqlite, redis)")
	flags.String("metrics-textfile", "", "write Prometheus metrics to this file on exit")
	_ = c.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = c.v.BindPFlag("cache.backend", flags.Lookup("cache-backend"))
	_ = c.v.BindPFlag("metrics.textfile_path", flags.Lookup("metrics-textfile"))

	root.AddCommand(
		c.citiesCommand(),
		c.nearbyCommand(),
		c.placesCommand(),
		c.searchCommand(),
		c.countryCommand(),
		c.countriesCommand(),
		c.coordsCommand(),
		c.imageCommand(),
		c.heroCommand(),
		c.profileCommand(),
		c.wishlistCommand(),
		c.cacheCommand(),
	)
	return root
}

func (c *cli) setup(ctx context.Context) error {
	cfg, err := config.Load(c.v, config.Options{ConfigFile: c.configFile, EnvFile: c.envFile})
	if err != nil {
		return err
	}
	logger := newLogger(c.stderr, cfg.LogLevel)
	logger.Debug().Str("cache_backend", cfg.Cache.Backend).Msg("Configuration loaded.")

	a, err := newApp(ctx, cfg, c.httpClient, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialise.")
		return err
	}
	c.app = a
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
