package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/doclens/doclens/internal/config"
	"github.com/doclens/doclens/internal/util"

	"github.com/doclens/doclens/pkg/ai"
	oll "github.com/doclens/doclens/pkg/ai/ollama"
	oai "github.com/doclens/doclens/pkg/ai/openai"
	"github.com/doclens/doclens/pkg/fragment"
	"github.com/doclens/doclens/pkg/loader/ocr"
	"github.com/doclens/doclens/pkg/loader/pdf"
	"github.com/doclens/doclens/pkg/logger"
	"github.com/doclens/doclens/pkg/logger/console"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger for env loading only, before config exists
	bootstrap := logger.New(console.NewConsoleLogger(console.ConsoleLoggerParams{}))
	util.LoadEnv(bootstrap)

	cfg, err := config.FromEnv()
	if err != nil {
		bootstrap.Fatal("Invalid configuration", "err", err)
	}

	log := logger.New(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: cfg.Debug,
	}))

	path := util.GetEnv("ANALYZE_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		log.Fatal("No input file given, pass a PDF path or set ANALYZE_FILE")
	}

	var aiClient ai.ExtractionClient

	switch cfg.Adapter {
	case config.AdapterOllama:
		client, err := oll.NewExtractionOllamaClient(oll.NewExtractionOllamaClientParams{
			ExtractionModel: cfg.ExtractionModel,
			ImageModel:      cfg.ImageModel,

			BaseURL: cfg.ChatURL,
			ApiKey:  cfg.ChatKey,

			MaxConcurrentRequests: int64(cfg.MaxConcurrentChunks),
		})
		if err != nil {
			log.Fatal("Could not create Ollama client", "err", err)
		}
		aiClient = client
	default:
		aiClient = oai.NewExtractionOpenAIClient(oai.NewExtractionOpenAIClientParams{
			ExtractionModel: cfg.ExtractionModel,
			ImageModel:      cfg.ImageModel,

			ChatURL:  cfg.ChatURL,
			ChatKey:  cfg.ChatKey,
			ImageURL: cfg.ImageURL,
			ImageKey: cfg.ImageKey,

			MaxConcurrentImages: int64(cfg.MaxConcurrentChunks),
		})
	}

	renderer, err := pdf.NewRenderer(pdf.NewRendererParams{
		Path:   path,
		Logger: log,
	})
	if err != nil {
		log.Fatal("Could not open document", "path", path, "err", err)
	}
	defer renderer.Close()

	recognizer, err := ocr.NewRecognizer(ocr.NewRecognizerParams{
		Client: aiClient,
		Logger: log,
	})
	if err != nil {
		log.Fatal("Could not create recognizer", "err", err)
	}

	client, err := fragment.NewFragmentClient(fragment.NewFragmentClientParams{
		Oracle:     aiClient,
		Recognizer: recognizer,
		Logger:     log,

		PageThreshold:       cfg.PageThreshold,
		ChunkSize:           cfg.ChunkSize,
		FineGrained:         cfg.FineGrained,
		NoiseThreshold:      cfg.NoiseThreshold,
		ContextOverlap:      cfg.ContextOverlap,
		MaxConcurrentChunks: cfg.MaxConcurrentChunks,
		OracleRetries:       cfg.OracleRetries,
		LanguageHints:       cfg.LanguageHints,
	})
	if err != nil {
		log.Fatal("Could not create fragment client", "err", err)
	}

	log.Info("Analyzing document", "path", path)

	result, err := client.Analyze(ctx, renderer)
	if err != nil {
		log.Fatal("Analysis failed", "path", path, "err", err)
	}

	outPath := outputPath(cfg.OutputDir, path)
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal("Could not encode result", "err", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		log.Fatal("Could not write result", "path", outPath, "err", err)
	}

	metrics := aiClient.GetMetrics()
	log.Info("Analysis complete",
		"output", outPath,
		"relationships", len(result.Relationships),
		"errors", len(result.Errors),
		"inputTokens", metrics.InputTokens,
		"outputTokens", metrics.OutputTokens,
		"durationMs", metrics.DurationMs,
	)
}

// outputPath derives <stem>_analysis.json inside dir from the input path.
func outputPath(dir string, input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"_analysis.json")
}
