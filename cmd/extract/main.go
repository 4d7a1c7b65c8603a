package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MIDevJourney/invoice-analyzer/internal/common"
	"github.com/MIDevJourney/invoice-analyzer/internal/extract"
	"github.com/MIDevJourney/invoice-analyzer/internal/extractcache"
	"github.com/MIDevJourney/invoice-analyzer/internal/filestore"
	"github.com/MIDevJourney/invoice-analyzer/internal/llm/openai"
	"github.com/MIDevJourney/invoice-analyzer/internal/pipeline"
	"github.com/MIDevJourney/invoice-analyzer/internal/usagelog"
)

// extract runs the full pipeline against a single local PDF and prints the
// structured fields as JSON. Useful for prompt and parser iteration without
// the API server.
func main() {
	var docID string

	root := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Run field extraction against one local PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], docID)
		},
	}
	root.Flags().StringVar(&docID, "id", "", "document id for cache and usage log (default: file name)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, file, docID string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	name := filepath.Base(abs)
	if docID == "" {
		docID = name
	}

	files, err := filestore.NewLocal(dir)
	if err != nil {
		return err
	}

	cfg := common.LoadConfig()
	orch := pipeline.NewOrchestrator(
		logger,
		files,
		extract.NewPDFExtractor(logger),
		extractcache.New(cfg.Cache.Dir, logger),
		openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger),
		usagelog.New(cfg.Usage.Path),
	)

	fields, err := orch.Process(ctx, pipeline.DocumentRef{ID: docID, Path: name})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
