// Package cmd — sync command.
// The main command: crawl a site into a node graph, finalize it
// (classify → repair → normalize), write the collection bundle, archive
// it, and optionally upload.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/cardsync/core"
	"github.com/gaurav-prasanna/cardsync/core/classify"
	"github.com/gaurav-prasanna/cardsync/core/fetch"
	"github.com/gaurav-prasanna/cardsync/core/output"
	"github.com/gaurav-prasanna/cardsync/core/render"
	"github.com/gaurav-prasanna/cardsync/core/sync"
	"github.com/gaurav-prasanna/cardsync/crawl"
)

var (
	flagConfig     string
	flagCollection string
	flagPolicy     string
	flagOutputDir  string
	flagMaxPages   int
	flagDownload   bool
	flagPrintTree  bool
	flagPreview    bool
	flagMarkdown   bool
	flagPDF        bool
	flagUpload     bool
	flagMode       string
	flagEndpoint   string
	flagToken      string
)

var syncCmd = &cobra.Command{
	Use:   "sync <url>",
	Short: "Crawl a site and build an uploadable collection bundle",
	Long: `Sync crawls the given site, builds the content tree, normalizes it into
board groups, boards, sections, and cards, and writes the collection
bundle plus its zip archive.

Examples:
  cardsync sync https://docs.example.com --collection Docs
  cardsync sync https://docs.example.com --policy favor-sections --print-tree
  cardsync sync https://docs.example.com --download --upload --mode replace`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&flagConfig, "config", "", "TOML config file")
	syncCmd.Flags().StringVar(&flagCollection, "collection", "", "Collection name or id (also names the bundle)")
	syncCmd.Flags().StringVar(&flagPolicy, "policy", "", "Classification policy: favor-boards (default) or favor-sections")
	syncCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Working directory for the bundle (default: system temp)")
	syncCmd.Flags().IntVar(&flagMaxPages, "max_pages", 0, "Crawl page limit")
	syncCmd.Flags().BoolVar(&flagDownload, "download", false, "Download referenced resources")
	syncCmd.Flags().BoolVar(&flagPrintTree, "print-tree", false, "Print the finalized tree")
	syncCmd.Flags().BoolVar(&flagPreview, "preview", false, "Write an index.html preview into the bundle")
	syncCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Also write Markdown copies of cards")
	syncCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Also write a PDF outline of the collection")
	syncCmd.Flags().BoolVar(&flagUpload, "upload", false, "Upload the archive after building")
	syncCmd.Flags().StringVar(&flagMode, "mode", string(core.ModeReplace), "Upload mode: replace or append")
	syncCmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "Upload endpoint")
	syncCmd.Flags().StringVar(&flagToken, "token", "", "Upload bearer token")
}

func runSync(cmd *cobra.Command, args []string) error {
	baseURL := args[0]

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}
	collection := firstNonEmpty(flagCollection, cfg.Collection)
	policyName := firstNonEmpty(flagPolicy, cfg.Policy)
	outputDir := firstNonEmpty(flagOutputDir, cfg.OutputDir)
	endpoint := firstNonEmpty(flagEndpoint, cfg.Endpoint)
	token := firstNonEmpty(flagToken, cfg.Token)
	download := flagDownload || cfg.Download

	policy, err := classify.ParsePolicy(policyName)
	if err != nil {
		return err
	}
	mode := core.UploadMode(flagMode)
	if flagUpload {
		if mode != core.ModeReplace && mode != core.ModeAppend {
			return fmt.Errorf("invalid upload mode %q (want replace or append)", flagMode)
		}
		if endpoint == "" {
			return fmt.Errorf("--upload needs an endpoint (flag or config)")
		}
		if collection == "" {
			return fmt.Errorf("--upload needs a collection name or id")
		}
	}

	s, err := sync.New(sync.Config{
		ID:     collection,
		Dir:    outputDir,
		Clear:  true,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	// --- Ingest ---
	fetcher := fetch.New()
	ctx := context.Background()

	fmt.Fprintf(os.Stdout, "Crawling %s...\n", baseURL)
	count, err := crawl.Ingest(ctx, baseURL, s, fetcher, crawl.Options{
		MaxPages: flagMaxPages,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("ingesting site: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Ingested %d pages\n", count)

	// --- Finalize ---
	opts := sync.FinalizeOptions{Policy: policy}
	if download {
		opts.Downloader = fetcher
	}
	result, err := s.Finalize(opts)
	if err != nil {
		return fmt.Errorf("finalizing: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Finalized %d nodes, %d resources\n", len(result.Nodes), len(result.Resources))

	if flagPrintTree {
		s.PrintTree(os.Stdout)
	}

	// --- Export ---
	if err := s.WriteBundle(); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	if err := writeExtras(s, result.Nodes); err != nil {
		return err
	}

	archivePath, err := s.Zip(output.NewZipArchiver())
	if err != nil {
		return fmt.Errorf("archiving bundle: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", archivePath)

	if flagUpload {
		uploader := output.NewHTTPUploader(endpoint, token)
		if err := s.Upload(uploader, collection, mode); err != nil {
			return fmt.Errorf("uploading: %w", err)
		}
		fmt.Fprintf(os.Stdout, "✓ Uploaded to %s (%s)\n", endpoint, mode)
	}
	return nil
}

// writeExtras emits the optional render outputs into the bundle dir.
func writeExtras(s *sync.Sync, nodes []*core.Node) error {
	w, err := output.NewWriter(s.ContentDir())
	if err != nil {
		return err
	}

	if flagPreview {
		data := render.Preview(s.Registry, func(id string) string {
			return "cards/" + id + ".html"
		})
		if _, err := w.Write("index.html", data); err != nil {
			return err
		}
	}

	if flagMarkdown {
		for _, n := range nodes {
			if n.Type != core.TypeCard || n.Content == "" {
				continue
			}
			md, err := render.CardMarkdown(n)
			if err != nil {
				return err
			}
			if _, err := w.Write("markdown/"+n.ID+".md", md); err != nil {
				return err
			}
		}
	}

	if flagPDF {
		data, err := render.OutlinePDF(s.Registry, s.ID)
		if err != nil {
			return fmt.Errorf("rendering outline: %w", err)
		}
		if _, err := w.Write("outline.pdf", data); err != nil {
			return err
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
