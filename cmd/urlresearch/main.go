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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"urlresearch/internal/answer"
	"urlresearch/internal/archive"
	"urlresearch/internal/config"
	"urlresearch/internal/ingest"
	"urlresearch/internal/retrieve"
	"urlresearch/internal/splitter"
	"urlresearch/internal/vector"
	"urlresearch/internal/version"
	"urlresearch/internal/web"
)

var (
	cfgFile string
	verbose bool
	replace bool
	topK    int
)

var rootCmd = &cobra.Command{
	Use:   "urlresearch",
	Short: "URL research tool - index web pages and ask questions about them",
	Long: `urlresearch fetches web pages, indexes their text content in a local
vector store, and answers natural-language questions from the indexed
material with source citations.`,
	Version: version.Full(),
}

var indexCmd = &cobra.Command{
	Use:   "index URL...",
	Short: "Fetch and index one or more URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(args)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Ask a question about the indexed sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(args[0])
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("urlresearch %s (%s)\n", version.Full(), version.GoVersion)
	},
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	indexCmd.Flags().BoolVar(&replace, "replace", false, "drop previously indexed chunks for each URL before re-indexing")
	askCmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(versionCmd)
}

func initEnv() {
	// Load .env early so ${ENV_VAR} config expansion sees its values.
	_ = godotenv.Load()

	if verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("Verbose logging enabled")
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newEmbedder(cfg *config.Config) (vector.Embedder, error) {
	switch cfg.Vector.Provider {
	case "openai":
		oc := cfg.Vector.OpenAI
		if oc.APIKey == "" {
			return nil, fmt.Errorf("openai embedding provider selected but no api_key configured")
		}
		return vector.NewOpenAIEmbedder(oc.APIKey, oc.Model, oc.BaseURL, oc.Dimensions), nil
	case "ollama":
		lc := cfg.Vector.Ollama
		return vector.NewOllamaEmbedder(lc.Host, lc.Model, lc.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Vector.Provider)
	}
}

func openStore(cfg *config.Config) (*vector.SQLite, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	if verbose {
		log.Printf("using embedder %s, vector store %s", embedder.Name(), cfg.Vector.Path)
	}
	return vector.NewSQLite(cfg.Vector.Path, embedder)
}

func runIndex(urls []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	pages, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		return err
	}
	defer pages.Close()

	if replace {
		for _, url := range urls {
			n, err := store.DeleteByURL(ctx, url)
			if err != nil {
				return err
			}
			if n > 0 && verbose {
				log.Printf("dropped %d stale chunks for %s", n, url)
			}
		}
	}

	sp, err := splitter.New(cfg.Vector.ChunkSize, cfg.Vector.ChunkOverlap)
	if err != nil {
		return err
	}

	fetcher := web.NewFetcher(
		&http.Client{Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second},
		cfg.Fetch.UserAgent,
	)

	ing := ingest.New(fetcher, sp, store)
	report := ing.IngestAll(ctx, urls)

	for _, url := range report.Indexed {
		if _, err := pages.SavePage(ctx, url, report.FullTexts[url], time.Now()); err != nil {
			log.Printf("WARNING: archiving %s: %v", url, err)
		}
		fmt.Printf("indexed  %s\n", url)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "failed   %s: %v\n", f.URL, f.Err)
	}

	if len(report.Indexed) == 0 && len(report.Failures) > 0 {
		return fmt.Errorf("all %d URLs failed to index", len(report.Failures))
	}
	return nil
}

func runAsk(question string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking index: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("nothing indexed yet: run 'urlresearch index URL...' first")
	}

	k := cfg.Retrieval.K
	if topK > 0 {
		k = topK
	}

	retriever := retrieve.New(store, k)
	results, err := retriever.Retrieve(ctx, question)
	if err != nil {
		return err
	}

	if cfg.Generation.Endpoint == "" {
		return fmt.Errorf("no generation endpoint configured: set generation.endpoint or WORKER_ENDPOINT")
	}

	gen := answer.NewGenerator(cfg.Generation.Endpoint,
		&http.Client{Timeout: time.Duration(cfg.Generation.TimeoutSecs) * time.Second})

	res, err := gen.Answer(ctx, question, results)
	if err != nil {
		return err
	}

	fmt.Println(res.Answer)
	if len(res.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range res.Sources {
			fmt.Printf("- %s\n", src)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
