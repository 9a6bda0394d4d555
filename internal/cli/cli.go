package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"blade-trans-sync/internal/cache"
	"blade-trans-sync/internal/config"
	"blade-trans-sync/internal/export"
	"blade-trans-sync/internal/graph"
	"blade-trans-sync/internal/interpolation"
	"blade-trans-sync/internal/parser"
	"blade-trans-sync/internal/syncer"
	"blade-trans-sync/internal/translation"
	"blade-trans-sync/internal/watch"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattn/go-isatty"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree around a freshly loaded configuration.
func NewRootCmd() *cobra.Command {
	cfg := config.Load()
	var identity string

	rootCmd := &cobra.Command{
		Use:   "blade-trans-sync",
		Short: "Keep Blade translation files in sync with their templates",
		Long: `Extracts __(), trans() and @lang() keys from Blade templates and merges them
into the paired PHP translation file (home.blade.php → home.php), keeping
existing translations and dropping keys the template no longer uses.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("identity-langs") {
				cfg.IdentityLanguages = config.SplitList(identity)
			}
			setupLogging(cfg.LogLevel)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.DefaultLanguage, "default-lang", cfg.DefaultLanguage, "Language created when a translation file has none")
	flags.StringVar(&identity, "identity-langs", strings.Join(cfg.IdentityLanguages, ","), "Languages whose new entries default to the key itself")
	flags.IntVar(&cfg.WorkerCount, "workers", cfg.WorkerCount, "Concurrent files for sync-all")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(syncCmd(cfg))
	rootCmd.AddCommand(syncAllCmd(cfg))
	rootCmd.AddCommand(watchCmd(cfg))
	rootCmd.AddCommand(checkCmd(cfg))
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(usagesCmd(cfg))

	return rootCmd
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		TimeFormat: time.DateTime,
	})
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <template>",
		Short: "Print the translation keys used in a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markup, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			for _, key := range translation.ExtractKeys(string(markup)) {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}

func syncCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <template>...",
		Short: "Synchronize the translation files of the given templates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runSync(cfg, args, dryRun)
		},
	}
	cmd.Flags().Bool("dry-run", false, "Report changes without writing files")
	return cmd
}

func syncAllCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-all <directory>",
		Short: "Synchronize every template under a directory that has a translation file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runSyncAll(cfg, args[0], dryRun)
		},
	}
	cmd.Flags().Bool("dry-run", false, "Report changes without writing files")
	return cmd
}

func watchCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Synchronize translation files whenever a template is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cfg, args[0])
		},
	}
	cmd.Flags().DurationVar(&cfg.WatchDebounce, "debounce", cfg.WatchDebounce, "Quiet period before a saved template is processed")
	return cmd
}

func checkCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <translation-file>",
		Short: "Report untranslated entries and translations that drop :placeholders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strict, _ := cmd.Flags().GetBool("strict")
			return runCheck(cmd, cfg, args[0], strict)
		},
	}
	cmd.Flags().Bool("strict", false, "Exit with an error when issues are found")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <translation-file>",
		Short: "Write a translation file as TSV, JSON or YAML to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("format")
			format, err := export.ParseFormat(name)
			if err != nil {
				return err
			}
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			return export.Write(cmd.OutOrStdout(), doc, format)
		},
	}
	cmd.Flags().String("format", "json", "Export format: tsv, json or yaml")
	return cmd
}

func usagesCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usages [key]",
		Short: "List the templates using a key, or the keys of a template (requires Neo4j)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, _ := cmd.Flags().GetString("template")
			if (template == "") == (len(args) == 0) {
				return errors.New("give either a key or --template")
			}
			return runUsages(cmd, cfg, args, template)
		},
	}
	cmd.Flags().String("template", "", "List the keys recorded for this template instead")
	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// dependencies holds the optional backing services of a syncer.
type dependencies struct {
	pgPool      *pgxpool.Pool
	neo4jDriver neo4j.DriverWithContext
	cache       *cache.FingerprintCache
	usage       syncer.UsageRecorder
}

// initDependencies connects the services enabled in cfg: PostgreSQL for the
// fingerprint cache and Neo4j for the key usage graph. Both are optional.
func initDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}

	var store cache.Store
	if cfg.DatabaseURL != "" {
		pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect PostgreSQL: %w", err)
		}
		deps.pgPool = pgPool

		if err := pgPool.Ping(ctx); err != nil {
			deps.Close(ctx)
			return nil, fmt.Errorf("ping PostgreSQL: %w", err)
		}

		pgStore := cache.NewPostgresStore(pgPool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			deps.Close(ctx)
			return nil, err
		}
		store = pgStore
		log.Info().Msg("Connected to PostgreSQL")
	}

	deps.cache = cache.NewFingerprintCache(store)
	if err := deps.cache.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload cache")
	}

	if cfg.Neo4jURI != "" {
		driver, err := connectNeo4j(ctx, cfg)
		if err != nil {
			deps.Close(ctx)
			return nil, err
		}
		deps.neo4jDriver = driver

		builder := graph.NewGraphBuilder(driver)
		if err := builder.EnsureSchema(ctx); err != nil {
			deps.Close(ctx)
			return nil, fmt.Errorf("ensure graph schema: %w", err)
		}
		deps.usage = builder
	}

	return deps, nil
}

func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")

	return driver, nil
}

func (d *dependencies) Close(ctx context.Context) {
	if d.pgPool != nil {
		d.pgPool.Close()
	}
	if d.neo4jDriver != nil {
		if err := d.neo4jDriver.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to close Neo4j driver")
		}
	}
}

func newSyncer(cfg *config.Config, deps *dependencies, dryRun bool) *syncer.Syncer {
	return syncer.New(syncer.Options{
		Policy:  cfg.Policy(),
		DryRun:  dryRun,
		Workers: cfg.WorkerCount,
		Cache:   deps.cache,
		Usage:   deps.usage,
	})
}

// runSync handles the `sync` command.
func runSync(cfg *config.Config, templates []string, dryRun bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	deps, err := initDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close(ctx)

	s := newSyncer(cfg, deps, dryRun)

	failed := 0
	for _, tmpl := range templates {
		res, err := s.SyncTemplate(ctx, tmpl)
		if err != nil {
			log.Error().Err(err).Str("template", tmpl).Msg("Synchronization failed")
			failed++
			continue
		}
		if res.Status == syncer.StatusNoDocument {
			log.Warn().Str("template", tmpl).Str("document", res.Document).Msg("No translation file next to template, skipped")
			continue
		}
		syncer.LogResult(res)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d templates failed", failed, len(templates))
	}
	return nil
}

// runSyncAll handles the `sync-all` command.
func runSyncAll(cfg *config.Config, root string, dryRun bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	deps, err := initDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close(ctx)

	tasks, err := newSyncer(cfg, deps, dryRun).SyncAll(ctx, root)
	if err != nil {
		return err
	}

	var results []syncer.Result
	failed := 0
	for _, task := range tasks {
		if task.Err != nil {
			log.Error().Err(task.Err).Str("template", task.Input.Template).Msg("Synchronization failed")
			failed++
			continue
		}
		syncer.LogResult(task.Result)
		results = append(results, task.Result)
	}

	summary := syncer.Summary(results)
	log.Info().
		Int("templates", len(tasks)).
		Int("written", summary[syncer.StatusWritten]+summary[syncer.StatusDryRun]).
		Int("unchanged", summary[syncer.StatusUnchanged]+summary[syncer.StatusCached]).
		Int("no_keys", summary[syncer.StatusNoKeys]).
		Int("failed", failed).
		Msg("Synchronization complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d templates failed", failed, len(tasks))
	}
	return nil
}

// runWatch handles the `watch` command.
func runWatch(cfg *config.Config, root string) error {
	ctx, cancel := setupContext()
	defer cancel()

	deps, err := initDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close(context.Background())

	return watch.New(newSyncer(cfg, deps, false), cfg.WatchDebounce).Run(ctx, root)
}

// runCheck handles the `check` command.
func runCheck(cmd *cobra.Command, cfg *config.Config, path string, strict bool) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	issues := interpolation.Check(doc, cfg.Policy())
	out := cmd.OutOrStdout()
	for _, is := range issues {
		switch is.Kind {
		case interpolation.IssueEmpty:
			fmt.Fprintf(out, "%s\t%s\tuntranslated\n", is.Language, is.Key)
		case interpolation.IssueMissingPlaceholder:
			fmt.Fprintf(out, "%s\t%s\tmissing :%s\n", is.Language, is.Key, strings.Join(is.Placeholders, ", :"))
		}
	}

	log.Info().Str("document", path).Int("languages", doc.Len()).Int("issues", len(issues)).Msg("Check complete")

	if strict && len(issues) > 0 {
		return fmt.Errorf("%d issues in %s", len(issues), path)
	}
	return nil
}

// runUsages handles the `usages` command.
func runUsages(cmd *cobra.Command, cfg *config.Config, args []string, template string) error {
	if cfg.Neo4jURI == "" {
		return errors.New("usages needs NEO4J_URI to be set")
	}

	ctx, cancel := setupContext()
	defer cancel()

	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	querier := graph.NewGraphQuerier(driver)

	var lines []string
	if template != "" {
		lines, err = querier.KeysForTemplate(ctx, template)
	} else {
		lines, err = querier.TemplatesUsingKey(ctx, args[0])
	}
	if err != nil {
		return err
	}

	for _, l := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), l)
	}
	return nil
}

// loadDocument reads and parses a translation file. A file without any
// language block is an error here, unlike during synchronization.
func loadDocument(path string) (*parser.Document, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read translation file: %w", err)
	}

	doc, ok := parser.ParseDocument(string(text))
	if !ok {
		return nil, fmt.Errorf("no language blocks in %s", path)
	}
	return doc, nil
}
