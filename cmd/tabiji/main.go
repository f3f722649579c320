// Package main is the tabiji CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hyperjump/tabiji/internal/cli"
	"github.com/hyperjump/tabiji/internal/config"
	"github.com/hyperjump/tabiji/internal/dataset"
	"github.com/hyperjump/tabiji/internal/model"
	"github.com/hyperjump/tabiji/internal/models"
	"github.com/hyperjump/tabiji/internal/recommend"
	"github.com/hyperjump/tabiji/internal/server"
	"github.com/hyperjump/tabiji/internal/storage"
	"github.com/hyperjump/tabiji/internal/watcher"
	"github.com/hyperjump/tabiji/pkg/metrics"
	"github.com/hyperjump/tabiji/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/tabiji/config.yaml"

// errNoBundle is returned by loadModel when no bundle exists and building is not allowed.
var errNoBundle = errors.New("no model bundle; run \"tabiji build\" first")

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "events":
		runQuery(metrics.KindEvents)
	case "locations":
		runQuery(metrics.KindLocations)
	case "build":
		runBuild()
	case "import":
		runImport()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("tabiji version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// mustSetup loads config and creates the logger, exiting on failure.
func mustSetup(configPath string, debugFlag bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug || *debug),
	)

	m := metrics.NewManager(metrics.WithRuntimeCollectors())
	ctx := context.Background()
	ds, bundle, err := loadModel(ctx, cfg, logger, m, cfg.Model.BuildOnStartOrDefault())
	if err != nil {
		logger.Fatal("Failed to load model", zap.Error(err))
	}
	rec, err := recommend.New(ds, bundle, recommendOptions(cfg, logger, m)...)
	if err != nil {
		logger.Fatal("Failed to create recommender", zap.Error(err))
	}

	var store storage.Storage
	if _, err := os.Stat(cfg.Storage.DatabasePath); err == nil {
		s, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Fatal("Failed to open record store", zap.Error(err))
		}
		defer s.Close()
		store = s
	}

	srv := server.NewServer(rec, store, cfg, m, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// recommendOptions maps the recommend section of cfg onto recommender options.
func recommendOptions(cfg *config.Config, logger *zap.Logger, m *metrics.Manager) []recommend.Option {
	return []recommend.Option{
		recommend.WithLogger(logger),
		recommend.WithMetrics(m),
		recommend.WithNeighbors(cfg.Recommend.Neighbors),
		recommend.WithCandidates(cfg.Recommend.Candidates),
		recommend.WithLimit(cfg.Recommend.Limit),
		recommend.WithScoreThreshold(cfg.Recommend.ScoreThresholdOrDefault()),
		recommend.WithLocationFallback(cfg.Recommend.LocationFallback),
		recommend.WithCacheSize(cfg.Recommend.CacheSize),
	}
}

// dataSource describes the configured dataset.
func dataSource(cfg *config.Config) dataset.Source {
	return dataset.Source{
		Path:   cfg.Data.Path,
		Format: cfg.Data.Format,
		Sheet:  cfg.Data.Sheet,
		Columns: dataset.Columns{
			EventName: cfg.Data.Columns.EventName,
			Location:  cfg.Data.Columns.Location,
			Latitude:  cfg.Data.Columns.Latitude,
			Longitude: cfg.Data.Columns.Longitude,
		},
	}
}

// loadModel loads the dataset and the bundle at model.bundle_path. When the bundle file
// does not exist and build is true, it is built from the dataset and saved.
func loadModel(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Manager, build bool) (*models.Dataset, *model.Bundle, error) {
	ds, err := dataset.Load(ctx, dataSource(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("load dataset %s: %w", cfg.Data.Path, err)
	}
	logger.Info("dataset loaded", zap.String("path", cfg.Data.Path), zap.Int("records", ds.Len()))

	bundle, err := model.Load(cfg.Model.BundlePath)
	switch {
	case err == nil:
		if err := bundle.Validate(ds); err != nil {
			return nil, nil, fmt.Errorf("bundle %s does not match dataset: %w", cfg.Model.BundlePath, err)
		}
		logger.Info("model loaded", zap.String("path", cfg.Model.BundlePath), zap.String("bundle_id", bundle.ID))
	case errors.Is(err, os.ErrNotExist) && build:
		bundle, err = buildBundle(ctx, cfg, ds, logger, m)
		if err != nil {
			return nil, nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		return nil, nil, fmt.Errorf("%s: %w", cfg.Model.BundlePath, errNoBundle)
	default:
		return nil, nil, err
	}
	m.SetModelInfo(ds.Len(), bundle.Vectorizer.VocabularySize())
	return ds, bundle, nil
}

// buildBundle fits a bundle over ds and saves it to model.bundle_path.
func buildBundle(ctx context.Context, cfg *config.Config, ds *models.Dataset, logger *zap.Logger, m *metrics.Manager) (*model.Bundle, error) {
	start := time.Now()
	bundle, err := model.Build(ctx, ds, model.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	m.ObserveModelBuild(time.Since(start))
	if err := bundle.Save(cfg.Model.BundlePath); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	logger.Info("model saved", zap.String("path", cfg.Model.BundlePath), zap.String("bundle_id", bundle.ID))
	return bundle, nil
}

// rebuild reloads the dataset and replaces the saved bundle.
func rebuild(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*model.Bundle, error) {
	ds, err := dataset.Load(ctx, dataSource(cfg))
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", cfg.Data.Path, err)
	}
	return buildBundle(ctx, cfg, ds, logger, nil)
}

// argsReorder moves any flags (and their values) that appear after the positional
// arguments to the front so that flag.Parse sees them. The flag package stops at the
// first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// joinQuery joins positional args with spaces so multi-word queries work with or
// without shell quoting.
func joinQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runQuery(kind string) {
	name := "query"
	if kind == metrics.KindLocations {
		name = "location"
	}
	fs := flag.NewFlagSet(kind, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: tabiji %s [flags] <%s>\n\n", kind, name)
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	text := joinQuery(fs.Args())
	if err := models.ValidateText(name, text); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	ctx := context.Background()
	ds, bundle, err := loadModel(ctx, cfg, logger, nil, cfg.Model.BuildOnStartOrDefault())
	if err != nil {
		logger.Fatal("Failed to load model", zap.Error(err))
	}
	rec, err := recommend.New(ds, bundle, recommendOptions(cfg, logger, nil)...)
	if err != nil {
		logger.Fatal("Failed to create recommender", zap.Error(err))
	}

	if kind == metrics.KindEvents {
		records, matched, err := rec.Events(ctx, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Recommendation failed: %v\n", err)
			os.Exit(1)
		}
		err = cli.WriteEvents(os.Stdout, records, matched, format)
		exitOnOutputError(err)
		return
	}
	records, err := rec.Locations(ctx, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recommendation failed: %v\n", err)
		os.Exit(1)
	}
	exitOnOutputError(cli.WriteLocations(os.Stdout, records, format))
}

func exitOnOutputError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	watch := fs.Bool("watch", false, "rebuild whenever the dataset file changes")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	bundle, err := rebuild(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Build failed", zap.Error(err))
	}
	fmt.Printf("Model %s built from %s\n", bundle.ID, cfg.Data.Path)
	if !*watch {
		return
	}

	var mu sync.Mutex
	opts := []watcher.WatcherOption{}
	if cfg.Debug || *debug {
		opts = append(opts, watcher.WithLogger(logger))
	}
	w, err := watcher.NewWatcher([]string{cfg.Data.Path}, func(path string) {
		mu.Lock()
		defer mu.Unlock()
		logger.Info("dataset changed, rebuilding", zap.String("path", path))
		b, err := rebuild(ctx, cfg, logger)
		if err != nil {
			logger.Warn("rebuild failed", zap.String("path", path), zap.Error(err))
			return
		}
		fmt.Printf("Model %s rebuilt from %s\n", b.ID, path)
	}, opts...)
	if err != nil {
		logger.Fatal("Failed to create watcher", zap.Error(err))
	}
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", cfg.Data.Path)
	<-ctx.Done()
}

// importFile loads a CSV or XLSX file with the configured column mapping and replaces
// the contents of the record store with it.
func importFile(ctx context.Context, cfg *config.Config, path, sheet string) (*models.Import, error) {
	format, err := dataset.ResolveFormat(path, "")
	if err != nil {
		return nil, err
	}
	if format == dataset.FormatSQLite {
		return nil, fmt.Errorf("%w: import reads csv or xlsx, got %s", dataset.ErrUnsupportedFormat, path)
	}
	src := dataSource(cfg)
	src.Path, src.Format, src.Sheet = path, format, sheet
	ds, err := dataset.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	defer store.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return store.ReplaceRecords(ctx, abs, ds)
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	sheet := fs.String("sheet", "", "worksheet to read from an xlsx file (default: first sheet)")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: tabiji import [flags] <file.csv|file.xlsx>")
		os.Exit(1)
	}
	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()

	imp, err := importFile(context.Background(), cfg, fs.Arg(0), *sheet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	logger.Info("records imported",
		zap.String("import_id", imp.ID),
		zap.String("source", imp.Source),
		zap.Int("rows", imp.Rows))
	fmt.Printf("Imported %d records into %s (import %s)\n", imp.Rows, cfg.Storage.DatabasePath, imp.ID)
	if cfg.Data.Format != dataset.FormatSQLite && !strings.EqualFold(filepath.Ext(cfg.Data.Path), ".db") {
		fmt.Printf("Set data.path to %s and data.format to %q to serve the imported records.\n",
			cfg.Storage.DatabasePath, dataset.FormatSQLite)
	}
}

// localStatus builds the status report without a running server.
func localStatus(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*models.Status, error) {
	ds, bundle, err := loadModel(ctx, cfg, logger, nil, false)
	if err != nil {
		return nil, err
	}
	rec, err := recommend.New(ds, bundle)
	if err != nil {
		return nil, err
	}
	status := rec.Status()
	status.DataPath = cfg.Data.Path
	status.BundlePath = cfg.Model.BundlePath
	if diskBytes, err := storage.DiskUsageBytes(cfg.Data.Path, cfg.Model.BundlePath, cfg.Storage.DatabasePath); err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	if _, err := os.Stat(cfg.Storage.DatabasePath); err == nil {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open record store: %w", err)
		}
		defer store.Close()
		imp, err := store.LastImport(ctx)
		if err != nil {
			return nil, err
		}
		status.LastImport = imp
	}
	return &status, nil
}

func statusViaHTTP(serverURL string) (*models.Status, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(strings.TrimRight(serverURL, "/") + "/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s models.Status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", "http://localhost:8000", "server URL (empty = read the data and bundle directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var status *models.Status
	if *serverURL != "" {
		status, err = statusViaHTTP(*serverURL)
	} else {
		cfg, _, logger := mustSetup(*configPath, false)
		defer logger.Sync()
		status, err = localStatus(context.Background(), cfg, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	exitOnOutputError(cli.WriteStatus(os.Stdout, status, format))
}

// writeDefaultConfig writes a config with every default applied to path. An existing
// file is only replaced when force is set.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	return config.Save(path, config.Default())
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	path := defaultConfigPath
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if err := writeDefaultConfig(path, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", path)
}

func printUsage() {
	fmt.Println(`tabiji - event and location recommendations

Usage:
  tabiji server [flags]                 Start the HTTP server
  tabiji events [flags] <query>         Recommend events similar to the best matching event
  tabiji locations [flags] <location>   Recommend records for a location
  tabiji build [flags]                  Build and save the model bundle
  tabiji import [flags] <file>          Copy a csv or xlsx file into the record store
  tabiji status [flags]                 Show dataset and model status
  tabiji init [-force] [path]           Write a default config file
  tabiji version                        Show version
  tabiji help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/tabiji/config.yaml)
  --debug            Enable debug logging

Events/Locations Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

Build Flags:
  --config string    Config file path
  --watch            Rebuild whenever the dataset file changes
  --debug            Enable debug logging

Import Flags:
  --config string    Config file path
  --sheet string     Worksheet to read from an xlsx file (default: first sheet)

Status Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") to read files directly.
  --output string    Output format: text or json (default: text)

Examples:
  tabiji server
  tabiji events "jazz festival"
  tabiji events --output json jazz
  tabiji locations Tokyo
  tabiji build --watch
  tabiji import --sheet Events events.xlsx
  tabiji status --server ""
  tabiji init ./config.yaml`)
}
