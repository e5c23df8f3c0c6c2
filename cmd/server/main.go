package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whiteboard-service/internal/domain/entity"
	domainrepo "whiteboard-service/internal/domain/repository"
	"whiteboard-service/internal/infrastructure/config"
	"whiteboard-service/internal/infrastructure/oauth"
	"whiteboard-service/internal/infrastructure/persistence"
	"whiteboard-service/internal/interface/api"
	cacheRepo "whiteboard-service/internal/interface/repository"
	sheetsReader "whiteboard-service/internal/interface/sheets"
	"whiteboard-service/internal/usecase"
	"whiteboard-service/pkg/logger"
	"whiteboard-service/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Whiteboard Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Load the whiteboard descriptor (hot-reloadable)
	board, err := config.LoadWhiteboard(cfg.WhiteboardConfigPath, log)
	if err != nil {
		log.Fatal("Failed to load whiteboard config", "error", err, "path", cfg.WhiteboardConfigPath)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection (run report history)
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	reportRepo := cacheRepo.NewMongoRunReportRepository(db)

	// Set up fleet reference (optional)
	var fleetRepo domainrepo.FleetRepository
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		fleetRepo = cacheRepo.NewGormFleetRepository(gormDB)
	} else {
		log.Warn("POSTGRES_DSN not set, model codes pass through unnormalized")
	}

	// Set up the schedule cache
	redisClient := persistence.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient == nil {
		log.Warn("Redis unavailable, every query will compute live", "addr", cfg.RedisAddr)
	}
	scheduleCache := cacheRepo.NewRedisScheduleCache(redisClient, log)

	// Set up Sheets access
	sheetsOAuth := oauth.NewSheetsOAuth(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRefreshToken,
		log,
	)
	tokenSource := sheetsOAuth.GetTokenSource(ctx)

	locator := func() (string, string) {
		wb := board.Current()
		return wb.SpreadsheetID, wb.ReadRange
	}
	reader, err := sheetsReader.NewSheetsReader(ctx, tokenSource, locator, log)
	if err != nil {
		log.Fatal("Failed to create Sheets reader", "error", err)
	}

	// Assemble the core
	m := metrics.NewMetrics("whiteboard")
	boardProvider := func() usecase.BoardSpec { return boardSpec(board.Current()) }

	resolver := usecase.NewRosterResolver(reader, log)
	extractor := usecase.NewEventExtractor(fleetRepo, log)
	processor := usecase.NewBatchProcessor(reader, scheduleCache, reportRepo, resolver, extractor, boardProvider, m, log)
	query := usecase.NewQueryService(scheduleCache, reportRepo, resolver, processor, boardProvider, time.Now, m, log)

	// Warm the cache once at startup so the first widget request never
	// pays for a full scan.
	go func() {
		asOf, _, _ := usecase.ResolveAsOf("", board.Current().SimulationDate, time.Now)
		processor.RunAllTiers(ctx, asOf)
	}()

	// Schedule background tier runs. The cron specs are read at boot;
	// tier offsets and TTLs re-snapshot on every fire.
	scheduler := cron.New()
	for _, tier := range boardProvider().Tiers {
		tierName := tier.Name
		spec := tier.CronSpec
		if spec == "" {
			spec = "*/15 * * * *"
		}
		_, err := scheduler.AddFunc(spec, func() {
			spec := boardProvider()
			asOf, _, _ := usecase.ResolveAsOf("", spec.SimulationDate, time.Now)
			for _, t := range spec.Tiers {
				if t.Name != tierName {
					continue
				}
				if _, err := processor.RunTier(ctx, t, asOf); err != nil {
					log.Error("Scheduled tier run failed", "tier", tierName, "error", err)
				}
				return
			}
			log.Warn("Scheduled tier no longer configured", "tier", tierName)
		})
		if err != nil {
			log.Fatal("Invalid tier cron spec", "tier", tierName, "spec", spec, "error", err)
		}
		log.Info("Tier scheduled", "tier", tierName, "cron", spec)
	}
	scheduler.Start()

	// Set up HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	handler := api.NewScheduleHandler(query, processor, reportRepo, boardProvider, time.Now, log)
	api.RegisterRoutes(e, handler)

	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	scheduler.Stop()
	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Whiteboard Service stopped")
}

// boardSpec converts the descriptor snapshot into the shape the use cases
// consume.
func boardSpec(wb *config.Whiteboard) usecase.BoardSpec {
	bands := make(map[entity.Section]usecase.RowBand, len(wb.Bands))
	for name, b := range wb.Bands {
		bands[entity.Section(name)] = usecase.RowBand{Start: b.Start, End: b.End}
	}

	ranges := make([]usecase.RosterRangeSpec, 0, len(wb.RosterRanges))
	for _, r := range wb.RosterRanges {
		ranges = append(ranges, usecase.RosterRangeSpec{
			Range:    r.Range,
			Category: r.Category,
			Type:     entity.PersonType(r.Type),
		})
	}

	return usecase.BoardSpec{
		SheetNameLayout: wb.SheetNameLayout,
		WindowDays:      wb.WindowDays,
		SimulationDate:  wb.SimulationDate,
		Geometry: usecase.BoardGeometry{
			Bands:      bands,
			Changeover: wb.ChangeoverDate(),
		},
		Ranges:     ranges,
		Denylist:   wb.Denylist,
		Tiers:      wb.TierList(),
		Categories: wb.Categories(),
	}
}
