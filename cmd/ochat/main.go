package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tbekken/ochat/chat"
	"github.com/tbekken/ochat/config"
	"github.com/tbekken/ochat/models"
	"github.com/tbekken/ochat/opencode"
	"github.com/tbekken/ochat/render"
)

var (
	flagBaseURL string
	flagPort    int
	flagModel   string
	flagTimeout time.Duration
	flagLogFile string
	flagVerbose bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ochat [message]",
	Short: "Terminal chat client for an opencode agent server",
	Long: `ochat connects to a running opencode server, or starts one when none is
found, and drives an interactive chat session against it. A message given
on the command line becomes the first turn of the conversation.`,
	Version:       "0.1.0",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.LoadConfig(); err != nil {
			return err
		}
		applyFlags(cfg, cmd)
		if logger, err = buildLogger(cfg.LogFile, flagVerbose); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runChat,
}

func init() {
	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "opencode server URL (skips port discovery)")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "port to probe first and start a server on")
	rootCmd.Flags().StringVarP(&flagModel, "model", "m", "", "model as provider/model or a bare model name")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per-request timeout")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "write debug logs to this file")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log to stderr as well")
}

// applyFlags folds explicitly set flags over the loaded config. Flags the
// user did not touch leave the config values alone.
func applyFlags(cfg *config.Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.Server.URL = flagBaseURL
	}
	if flags.Changed("port") {
		cfg.Server.Port = flagPort
	}
	if flags.Changed("model") {
		cfg.Model = flagModel
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeoutSeconds = int(flagTimeout / time.Second)
	}
	if flags.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}
}

// buildLogger wires zap to the configured log file. Without a file and
// without --verbose everything is discarded; stdout stays reserved for the
// conversation itself.
func buildLogger(file string, verbose bool) (*zap.Logger, error) {
	if file == "" && !verbose {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = nil
	zcfg.ErrorOutputPaths = nil
	if file != "" {
		zcfg.OutputPaths = append(zcfg.OutputPaths, file)
		zcfg.ErrorOutputPaths = append(zcfg.ErrorOutputPaths, file)
	}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		zcfg.OutputPaths = append(zcfg.OutputPaths, "stderr")
		zcfg.ErrorOutputPaths = append(zcfg.ErrorOutputPaths, "stderr")
	}
	return zcfg.Build()
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.With(zap.String("run", uuid.NewString()[:8]))
	renderer := render.New(os.Stdout, log)

	client, server, err := opencode.Ensure(ctx, opencode.Options{
		BaseURL:  cfg.Server.URL,
		Port:     cfg.Server.Port,
		Timeout:  cfg.RequestTimeout(),
		OnStatus: renderer.Muted,
		Log:      log,
	})
	if err != nil {
		return err
	}
	if server != nil {
		defer server.Shutdown()
	}

	sel, registry := chooseModel(ctx, client, renderer, cfg.Model)

	c := chat.New(client, renderer, sel, registry, cfg.RequestTimeout(), log)
	if err := c.StartSession(ctx); err != nil {
		return err
	}

	renderer.Banner("ochat",
		fmt.Sprintf("Server   %s", client.BaseURL()),
		fmt.Sprintf("Model    %s", sel),
		fmt.Sprintf("Session  %s", c.Session().ID),
		"",
		"Type /help for commands.",
	)

	return c.Run(ctx, os.Stdin, strings.Join(args, " "))
}

// chooseModel resolves the configured model spec against the server's
// catalog. Catalog trouble never blocks startup: it downgrades to a warning
// and the selection is used as-is.
func chooseModel(ctx context.Context, client *opencode.Client, renderer *render.Renderer, spec string) (models.Selection, *models.Registry) {
	fallback := models.Parse(spec)
	if fallback.Provider == "" {
		fallback.Provider = models.DefaultProvider
	}

	catalog, err := client.Providers(ctx)
	if err != nil {
		renderer.Warn(fmt.Sprintf("could not fetch the model catalog (%v), using %s unvalidated", err, fallback))
		return fallback, nil
	}

	registry := models.New(catalog)
	sel, err := registry.Resolve(spec)
	if err != nil {
		renderer.Warn(fmt.Sprintf("%v, using %s anyway", err, fallback))
		return fallback, registry
	}
	if err := registry.Validate(sel); err != nil {
		renderer.Warn(fmt.Sprintf("%v, using it anyway", err))
	}
	return sel, registry
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}
