package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"promptsheet/pkg/core/agent"
	"promptsheet/pkg/core/config"
	"promptsheet/pkg/core/llm"
	"promptsheet/pkg/core/session"
	"promptsheet/pkg/core/sheets"
	"promptsheet/pkg/core/store"
	"promptsheet/pkg/core/xlsx"
)

func main() {
	configFile := flag.String("config", "", "config file path (default config.yaml / config.hjson)")
	sheetRef := flag.String("sheet", "", "spreadsheet URL or ID (overrides config)")
	workbook := flag.String("workbook", "", "local .xlsx path (overrides config)")
	provider := flag.String("provider", "", "provider to use (gemini, deepseek)")
	flag.Parse()

	godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := runOnce(context.Background(), *configFile, *sheetRef, *workbook, *provider, logger); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}

func runOnce(ctx context.Context, configFile, sheetRef, workbook, providerName string, logger *zap.Logger) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if sheetRef != "" {
		cfg.SpreadsheetID = sheetRef
	}
	if workbook != "" {
		cfg.SpreadsheetID = ""
		cfg.WorkbookPath = workbook
	}

	client, model, err := llm.Setup(ctx)
	if err != nil {
		return err
	}
	if cfg.DefaultModel != "" {
		model = cfg.DefaultModel
		client.DefaultModel = model
	}

	mgr := agent.NewManager(client.Provider, &llm.DeepSeekProvider{})
	if providerName != "" {
		if err := mgr.SetGlobalProvider(providerName); err != nil {
			return err
		}
	}
	client.Provider = mgr

	var st session.Store
	if cfg.SpreadsheetID != "" {
		st, err = sheets.NewStore(ctx, cfg.SpreadsheetID, os.Getenv("GOOGLE_CREDENTIALS_FILE"), logger)
	} else {
		path := cfg.WorkbookPath
		if path == "" {
			path = "promptsheet.xlsx"
		}
		st, err = xlsx.NewStore(path, logger)
	}
	if err != nil {
		return err
	}

	if cfg.DatabaseURL != "" {
		if err := store.InitDB(ctx); err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			defer store.Close()
		}
	}
	runs := store.NewRunsRepo(store.GetPool())

	app := session.New(st, client, runs, model, cfg.MaxConcurrent, logger)
	if err := app.Connect(ctx); err != nil {
		return err
	}
	if err := app.LoadAll(ctx); err != nil {
		return err
	}

	summary := app.RunPrompts(ctx, func(done, total int) {
		fmt.Printf("\r%d/%d jobs settled", done, total)
	})
	fmt.Println()

	if err := app.SaveAll(ctx); err != nil {
		return err
	}

	logger.Info("run complete",
		zap.String("run_id", summary.Record.ID.String()),
		zap.Int("jobs", summary.Record.JobCount),
		zap.Int("succeeded", summary.Record.Succeeded),
		zap.Int("failed", summary.Record.Failed),
		zap.Duration("duration", summary.Record.Duration))

	for _, res := range summary.Results {
		if res.Err != nil {
			logger.Warn("job failed",
				zap.Int("row", res.RowIndex),
				zap.String("column", res.ColumnName),
				zap.String("error_type", res.Err.ErrorType),
				zap.Bool("rate_limited", res.Err.IsRateLimit))
		}
	}
	return nil
}
