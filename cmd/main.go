package main

import (
	"log"

	"oring-bot/config"
	telegram "oring-bot/internal/api"
	app "oring-bot/internal/application"
	"oring-bot/internal/container"
	"oring-bot/internal/domain/port"
	"oring-bot/internal/infrastructure/archive"
	"oring-bot/internal/infrastructure/report"
	"oring-bot/internal/infrastructure/storage"
	"oring-bot/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	analyses, err := storage.NewSQLiteAnalysisRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open analysis store: %v", err)
	}
	defer analyses.Close()

	// Без OpenCV разметка рисуется схемой на gonum/plot
	renderer := report.NewFallbackRenderer(report.NewCrackMapRenderer())
	if vision.Available() {
		renderer = report.NewFallbackRenderer(vision.NewOverlayRenderer(), report.NewCrackMapRenderer())
	}

	inspectionCfg := app.DefaultInspectionConfig()
	inspectionCfg.CurveSamples = cfg.CurveSamples
	inspectionCfg.SimplifyEpsilon = cfg.SimplifyEpsilon
	inspectionCfg.ProximityEpsilon = cfg.ProximityEpsilon
	inspectionCfg.SnapRadius = cfg.SnapRadius

	// Собираем сервисы приложения
	appContainer := container.New(container.Dependencies{
		Users:       storage.NewMemoryUserRepository(),
		Inspections: storage.NewMemoryInspectionRepository(),
		Analyses:    analyses,
		Renderer:    renderer,
		Photos:      vision.NewPhotoChecker(),
		Archive:     archive.NewZipArchive(),
		Reports: map[app.ReportFormat]port.ReportWriter{
			app.ReportXLSX: report.NewXLSXReportWriter(),
			app.ReportCSV:  report.NewCSVReportWriter(),
		},
	}, inspectionCfg, app.SessionInfo{
		RDMSProjectNumber: cfg.RDMSProjectNumber,
		ProjectName:       cfg.ProjectName,
		TechnicianName:    cfg.TechnicianName,
	})

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	log.Println("Bot is running...")
	if err := bot.Run(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}
