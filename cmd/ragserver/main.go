package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/TatievskiArik/Article-RAG-System/internal/ai"
	"github.com/TatievskiArik/Article-RAG-System/internal/articles"
	"github.com/TatievskiArik/Article-RAG-System/internal/config"
	"github.com/TatievskiArik/Article-RAG-System/internal/datadir"
	"github.com/TatievskiArik/Article-RAG-System/internal/gateway"
	"github.com/TatievskiArik/Article-RAG-System/internal/maintenance"
	"github.com/TatievskiArik/Article-RAG-System/internal/store"
	"github.com/TatievskiArik/Article-RAG-System/internal/usage"
	"github.com/TatievskiArik/Article-RAG-System/internal/version"
)

var (
	cfgFile string
	port    int
)

var rootCmd = &cobra.Command{
	Use:   "ragserver",
	Short: "Article RAG server - ingest web articles and query them in natural language",
	Long: `ragserver ingests web articles, stores their text and embedding vectors in a
persistent vector store, and answers natural-language queries by retrieving
the most relevant articles and handing them to a completion model.`,
	Version: version.Full(),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Article RAG HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("ragserver %s\n", version.Full())
		if version.BuildDate != "unknown" {
			fmt.Printf("Build date: %s\n", version.BuildDate)
		}
		fmt.Printf("Go version: %s\n", version.GoVersion)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "config file path")
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	// Default to serve when no subcommand is given.
	rootCmd.RunE = serveCmd.RunE
}

func runServer() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Port = port
	}

	dirs, err := datadir.New(cfg.DataDir)
	if err != nil {
		return err
	}
	if err := dirs.EnsureDirs(); err != nil {
		return err
	}
	log.Printf("ragserver: data directory %s", dirs.Root())

	st := store.New(dirs.DBPath(), dirs.ArticlesDir(), store.Options{
		Floor: cfg.Search.Floor,
		TopK:  cfg.Search.TopK,
	})

	prompt, err := ai.LoadPromptTemplate(cfg.PromptTemplate)
	if err != nil {
		return err
	}
	client := ai.NewClient(ai.Config{
		Endpoint:            cfg.Azure.Endpoint,
		APIKey:              cfg.Azure.APIKey,
		APIVersion:          cfg.Azure.APIVersion,
		EmbeddingDeployment: cfg.Azure.EmbeddingDeployment,
		ChatDeployment:      cfg.Azure.ChatDeployment,
	}, prompt, nil)

	var recorder *usage.Recorder
	if cfg.Usage.IsEnabled() {
		recorder, err = usage.NewRecorder(dirs.UsageDBPath())
		if err != nil {
			return err
		}
		defer recorder.Close()
	}

	ingest := articles.NewService(st, articles.NewFetcher(&http.Client{Timeout: 30 * time.Second}), client, recorder)

	gw := gateway.New(cfg.Port, gateway.Deps{
		Store:     st,
		Ingest:    ingest,
		Embedder:  client,
		Completer: client,
		Usage:     recorder,
	})

	var sweeper *maintenance.Sweeper
	if cfg.Maintenance.Enabled {
		sweeper = maintenance.NewSweeper(st, cfg.Maintenance.Schedule)
		if err := sweeper.Start(); err != nil {
			return fmt.Errorf("start maintenance sweeper: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- gw.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if sweeper != nil {
			sweeper.Stop()
		}
		return err
	case sig := <-sigCh:
		log.Printf("ragserver: received %s, shutting down", sig)
	}

	if sweeper != nil {
		sweeper.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return gw.Shutdown(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
