package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/msalah0e/gridmap/internal/cache"
	"github.com/msalah0e/gridmap/internal/config"
	"github.com/msalah0e/gridmap/internal/fetch"
	"github.com/msalah0e/gridmap/internal/logging"
	"github.com/msalah0e/gridmap/internal/metrics"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/msalah0e/gridmap/internal/vault"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.3.0"

var (
	cfg    *config.Config
	logger = zap.NewNop()

	configPath string
	sourceFlag string
	localeFlag string
	logLevel   string
	logFormat  string
	offline    bool
)

var rootCmd = &cobra.Command{
	Use:   "gridmap",
	Short: "gridmap — knowledge graph explorer for renewable energy projects",
	Long: ui.Brand.Sprint(ui.Mark+" gridmap") + " — lay out and browse the project knowledge graph\n" +
		ui.Subtle.Sprint("Groups, processes, standards, risks, deliverables, tools and skills on one map"),
	Version:       version + " " + ui.Mark,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := setup(); err != nil {
			ui.Bad.Printf("  %v\n", err)
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.SetVersionTemplate("gridmap {{ .Version }}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default "+config.Path()+")")
	pf.StringVarP(&sourceFlag, "source", "s", "", "Dashboard base URL or dataset file (.json, .yaml)")
	pf.StringVar(&localeFlag, "locale", "", "Display locale, e.g. en or fr")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: console or json")
	pf.BoolVar(&offline, "offline", false, "Read the copy saved by \"gridmap pull\" instead of the dashboard")

	rootCmd.AddCommand(
		layoutCmd(),
		showCmd(),
		taxonomyCmd(),
		groupsCmd(),
		exportCmd(),
		uiCmd(),
		serveCmd(),
		pullCmd(),
		doctorCmd(),
		tokenCmd(),
		configCmd(),
		completionCmd(),
	)
}

// Execute runs the root command. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// setup loads the config, applies flag overrides and builds the logger.
func setup() error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	applySource(&cfg.Source, sourceFlag)
	if localeFlag != "" {
		cfg.View.Locale = localeFlag
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if offline && cfg.Source.Kind == config.SourceHTTP {
		if !cache.IsCached(cfg.Source.BaseURL) {
			return fmt.Errorf("no offline copy of %s; run `gridmap pull` first", cfg.Source.BaseURL)
		}
		cfg.Source.Kind = config.SourceFile
		cfg.Source.Dataset = cache.Path(cfg.Source.BaseURL)
	}
	if cfg.Source.Kind == config.SourceHTTP && cfg.Source.Token == "" {
		cfg.Source.Token = vault.Lookup(vault.New(), cfg.Source.BaseURL)
	}

	logger, err = logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return err
}

// applySource points src at a URL or a dataset file.
func applySource(src *config.SourceConfig, s string) {
	switch {
	case s == "":
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		src.Kind = config.SourceHTTP
		src.BaseURL = s
	default:
		src.Kind = config.SourceFile
		src.Dataset = s
	}
}

// sourceName identifies the configured source in logs and saved state.
func sourceName(src config.SourceConfig) string {
	if src.Kind == config.SourceFile {
		return src.Dataset
	}
	return src.BaseURL
}

// openSource builds the configured source wrapped with logging.
func openSource() fetch.Source {
	return openInstrumented(nil)
}

// openInstrumented is openSource recording fetch metrics in m.
func openInstrumented(m *metrics.Registry) fetch.Source {
	src, err := fetch.FromConfig(cfg.Source, logger)
	if err != nil {
		ui.Bad.Printf("  Failed to open source: %v\n", err)
		os.Exit(1)
	}
	return fetch.Instrument(src, cfg.Source.Kind, logger, m)
}

func locale() taxonomy.Locale {
	return taxonomy.ParseLocale(cfg.View.Locale)
}

// visibleTypes resolves a --types flag, falling back to the configured set.
func visibleTypes(flag string) taxonomy.Set {
	if flag == "" {
		return cfg.View.Visible
	}
	if flag == "all" {
		return taxonomy.AllLeaves
	}
	s, err := taxonomy.ParseSet(flag)
	if err != nil {
		ui.Bad.Printf("  %v\n", err)
		fmt.Println(ui.Subtle.Sprint("  Known types: " + taxonomy.AllLeaves.Plurals()))
		os.Exit(1)
	}
	return s
}

func typesUsage() string {
	return "Leaf types to show, comma separated (" + taxonomy.AllLeaves.Plurals() + ", or all)"
}
