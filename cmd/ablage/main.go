// Package main is the Ablage CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ablagehq/ablage/internal/archive"
	"github.com/ablagehq/ablage/internal/classify"
	"github.com/ablagehq/ablage/internal/config"
	"github.com/ablagehq/ablage/internal/extract"
	"github.com/ablagehq/ablage/internal/kernel"
	"github.com/ablagehq/ablage/internal/providers"
	"github.com/ablagehq/ablage/internal/server"
	"github.com/ablagehq/ablage/internal/watcher"
	"github.com/ablagehq/ablage/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ablage/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. A missing default config is not an error, the built-in defaults
// apply. Returns the config and the path it was loaded from ("" for defaults).
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
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return config.Default(), "", nil
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
	case "sort":
		runSort()
	case "scan":
		runScan()
	case "search":
		runSearch()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("ablage version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Ablage - lokales Dokumenten-Archiv mit KI-Einsortierung

Usage: ablage <command> [flags]

Commands:
  server    Start the HTTP server (archive API and chat)
  sort      Archive all documents waiting in the import directory
  scan      List the documents waiting in the import directory
  search    Search the archive by filename substring
  stats     Show archive statistics
  version   Print version

Use "ablage <command> -h" for command flags.
`)
}

// bootstrap loads config, builds the logger, and wires the archive service.
// The classifier is nil-safe: commands that never classify pass nil.
func bootstrap(configPath string, debugFlag bool, classifier classify.Classifier) (*config.Config, *zap.Logger, *archive.Service) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if resolvedPath != "" {
		logger.Debug("config loaded", zap.String("config_path", resolvedPath))
	}
	svc := archive.NewService(cfg.DMS.BaseDir, extract.New(logger), classify.NewCategorizer(classifier, logger), logger)
	return cfg, logger, svc
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.String("base_dir", cfg.DMS.BaseDir),
		zap.Bool("debug", debugMode),
	)

	ctx := context.Background()
	provider, err := providers.Select(ctx, providers.Options{
		Mode:      cfg.Provider.Mode,
		OllamaURL: cfg.Provider.OllamaURL,
		Logger:    logger,
	})
	var classifier classify.Classifier
	var k *kernel.Kernel
	if err != nil {
		logger.Warn("no AI provider, archival falls back to Unsortiert", zap.Error(err))
	} else {
		classifier = providers.AsClassifier(provider)
	}

	svc := archive.NewService(cfg.DMS.BaseDir, extract.New(logger), classify.NewCategorizer(classifier, logger), logger)
	if provider != nil {
		reg := kernel.NewRegistry()
		kernel.RegisterArchiveSkills(reg, svc)
		k = kernel.New(provider, reg, logger)
	}

	watchCtx, watchCancel := context.WithCancel(ctx)
	defer watchCancel()
	if cfg.Watch.Enabled {
		w := watcher.NewWatcher(svc.Settings().ImportDir, func(path string) {
			logger.Info("document arrived in import", zap.String("path", path))
			if !cfg.Watch.AutoSort {
				return
			}
			report, sortErr := svc.Sort(context.Background())
			if sortErr != nil {
				logger.Warn("auto sort failed", zap.Error(sortErr))
				return
			}
			logger.Info("auto sort finished", zap.Int("files", len(report.Outcomes)))
		}, watcher.WithLogger(logger))
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(svc, k, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

func runSort() {
	fs := flag.NewFlagSet("sort", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	provider, err := providers.Select(ctx, providers.Options{
		Mode:      cfg.Provider.Mode,
		OllamaURL: cfg.Provider.OllamaURL,
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	svc := archive.NewService(cfg.DMS.BaseDir, extract.New(logger),
		classify.NewCategorizer(providers.AsClassifier(provider), logger), logger)
	report, err := svc.Sort(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Einsortieren fehlgeschlagen: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(report.Summary())
}

func runScan() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	_, logger, svc := bootstrap(*configPath, false, nil)
	defer logger.Sync()

	files, err := svc.ListStaged()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan fehlgeschlagen: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("Import-Ordner ist leer.")
		return
	}
	fmt.Printf("%d Dokument(e) im Import-Ordner:\n", len(files))
	for _, f := range files {
		fmt.Printf("  %-40s %s\n", f.Name, utils.FormatBytes(f.Size))
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ablage search [flags] <query>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[2:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fs.Usage()
		os.Exit(1)
	}

	_, logger, svc := bootstrap(*configPath, false, nil)
	defer logger.Sync()

	hits := svc.Search(query)
	if len(hits) == 0 {
		fmt.Printf("Keine Treffer für %q.\n", query)
		return
	}
	fmt.Printf("%d Treffer:\n", len(hits))
	for _, h := range hits {
		fmt.Printf("  %-60s %s\n", h.Path, utils.FormatBytes(h.Size))
	}
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	_, logger, svc := bootstrap(*configPath, false, nil)
	defer logger.Sync()

	st := svc.Stats()
	fmt.Printf("Archiv:     %s\n", st.ArchiveDir)
	fmt.Printf("Import:     %s\n", st.ImportDir)
	fmt.Printf("Dokumente:  %d\n", st.Total)
	fmt.Printf("Größe:      %s\n", utils.FormatBytes(st.SizeBytes))
	fmt.Printf("Im Import:  %d\n", st.PendingImports)
	if len(st.Categories) > 0 {
		fmt.Println("Kategorien:")
		names := make([]string, 0, len(st.Categories))
		for name := range st.Categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-30s %d\n", name, st.Categories[name])
		}
	}
}
