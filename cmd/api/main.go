package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	apiconfig "promptsheet/pkg/api/config"
	"promptsheet/pkg/api/extract"
	"promptsheet/pkg/api/prompts"
	"promptsheet/pkg/api/run"
	"promptsheet/pkg/core/agent"
	"promptsheet/pkg/core/config"
	"promptsheet/pkg/core/llm"
	"promptsheet/pkg/core/prompt"
	"promptsheet/pkg/core/session"
	"promptsheet/pkg/core/sheets"
	"promptsheet/pkg/core/sources"
	"promptsheet/pkg/core/store"
	"promptsheet/pkg/core/xlsx"
)

func main() {
	godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()

	client, model, err := llm.Setup(ctx)
	if err != nil {
		logger.Fatal("credential setup failed", zap.Error(err))
	}
	if cfg.DefaultModel != "" {
		model = cfg.DefaultModel
		client.DefaultModel = model
	}

	if cfg.PromptLibrary != "" {
		if err := prompt.LoadLibrary(cfg.PromptLibrary); err != nil {
			logger.Warn("prompt library load failed", zap.Error(err))
		} else {
			logger.Info("prompt library loaded", zap.Int("templates", prompt.Get().Count()))
		}
	}

	mgr := agent.NewManager(client.Provider, &llm.DeepSeekProvider{})
	client.Provider = mgr

	st, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store setup failed", zap.Error(err))
	}

	var runs *store.RunsRepo
	if cfg.DatabaseURL != "" {
		if err := store.InitDB(ctx); err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			defer store.Close()
		}
	}
	runs = store.NewRunsRepo(store.GetPool())

	app := session.New(st, client, runs, model, cfg.MaxConcurrent, logger)
	if err := app.Connect(ctx); err != nil {
		logger.Fatal("document provisioning failed", zap.Error(err))
	}

	configHandler := apiconfig.NewHandler(mgr, model)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	runHandler := run.NewHandler(app, logger)
	http.HandleFunc("/api/run", runHandler.HandleRun)
	http.HandleFunc("/api/run/stream", runHandler.HandleRunStream)

	promptsHandler := prompts.NewHandler(client)
	http.HandleFunc("/api/prompts/single", promptsHandler.HandleSingle)
	http.HandleFunc("/api/prompts/library", promptsHandler.HandleLibrary)

	extractHandler := extract.NewHandler(app, sources.NewEnricher(logger))
	http.HandleFunc("/api/extract", extractHandler.HandleExtract)

	logger.Info("listening", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// buildStore picks the persistence backend: the spreadsheet service when a
// document is configured, a local workbook otherwise.
func buildStore(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (session.Store, error) {
	if cfg.SpreadsheetID != "" {
		return sheets.NewStore(ctx, cfg.SpreadsheetID, os.Getenv("GOOGLE_CREDENTIALS_FILE"), logger)
	}
	path := cfg.WorkbookPath
	if path == "" {
		path = "promptsheet.xlsx"
	}
	return xlsx.NewStore(path, logger)
}
