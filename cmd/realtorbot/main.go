package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/gratefultolord/realtor_bot/internal/bot"
	"github.com/gratefultolord/realtor_bot/internal/config"
	"github.com/gratefultolord/realtor_bot/internal/db"
	"github.com/gratefultolord/realtor_bot/internal/files"
	"github.com/gratefultolord/realtor_bot/internal/logging"
	"github.com/gratefultolord/realtor_bot/internal/metrics"
	"github.com/gratefultolord/realtor_bot/internal/notify"
	"github.com/gratefultolord/realtor_bot/internal/session"
	"github.com/gratefultolord/realtor_bot/internal/sheets"
	"github.com/gratefultolord/realtor_bot/internal/status"
	"github.com/gratefultolord/realtor_bot/internal/texts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.CheckCredentials(); err != nil {
		logger.Fatal("google credentials file not found", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(cfg.RegistryDriver, cfg.RegistryDSN)
	if err != nil {
		logger.Fatal("cannot connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal("cannot run migrations", zap.Error(err))
	}

	catalog, err := texts.LoadDir(cfg.TextsDir)
	if err != nil {
		logger.Fatal("cannot load texts", zap.Error(err))
	}

	gate := status.NewFile(cfg.StatusFile, logger.Named("status"))
	if err := gate.Ensure(); err != nil {
		logger.Fatal("cannot create status file", zap.Error(err))
	}

	backend, err := sheets.NewGoogleBackend(ctx, cfg.GoogleSheetID, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	if err != nil {
		logger.Fatal("cannot open spreadsheet", zap.Error(err))
	}

	states, closeStates, err := session.Open[bot.UserState](ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, "realtor:session", cfg.SessionTTL)
	if err != nil {
		logger.Fatal("cannot open session store", zap.Error(err))
	}
	defer closeStates()

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("cannot create telegram bot", zap.Error(err))
	}

	// Уведомления админам уходят от имени админ-бота.
	adminAPI, err := tgbotapi.NewBotAPI(cfg.AdminBotToken)
	if err != nil {
		logger.Fatal("cannot create admin telegram bot", zap.Error(err))
	}

	metrics.MustRegister()
	metricsServer := metrics.NewServer(cfg.MetricsAddr, logger.Named("metrics"))
	metricsServer.Start()

	botService := bot.New(
		botAPI,
		catalog,
		db.NewRegistry(database.Conn),
		sheets.NewSink(backend, logger.Named("sheets")),
		notify.NewNotifier(adminAPI, cfg.AdminIDs, logger.Named("notify")),
		gate,
		files.NewPhotoService(cfg.WelcomePhoto, logger.Named("files")),
		states,
		logger.Named("bot"),
	)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botAPI.GetUpdatesChan(u)

	logger.Info("bot started", zap.String("username", botAPI.Self.UserName))

	botService.Start(ctx, updates)
	botAPI.StopReceivingUpdates()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("cannot stop metrics server", zap.Error(err))
	}

	logger.Info("bot stopped")
}
