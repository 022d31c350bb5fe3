package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/empezz5-crypto/mdmoney/internal/config"
	"github.com/empezz5-crypto/mdmoney/internal/handler"
	accounthandler "github.com/empezz5-crypto/mdmoney/internal/handler/account"
	aihandler "github.com/empezz5-crypto/mdmoney/internal/handler/ai"
	bankhandler "github.com/empezz5-crypto/mdmoney/internal/handler/bank"
	budgethandler "github.com/empezz5-crypto/mdmoney/internal/handler/budget"
	pushhandler "github.com/empezz5-crypto/mdmoney/internal/handler/push"
	shortshandler "github.com/empezz5-crypto/mdmoney/internal/handler/shorts"
	txhandler "github.com/empezz5-crypto/mdmoney/internal/handler/transaction"
	redisrepo "github.com/empezz5-crypto/mdmoney/internal/repository/redis"
	"github.com/empezz5-crypto/mdmoney/internal/router"
	"github.com/empezz5-crypto/mdmoney/internal/service/account"
	"github.com/empezz5-crypto/mdmoney/internal/service/ai"
	"github.com/empezz5-crypto/mdmoney/internal/service/bank"
	"github.com/empezz5-crypto/mdmoney/internal/service/budget"
	"github.com/empezz5-crypto/mdmoney/internal/service/push"
	"github.com/empezz5-crypto/mdmoney/internal/service/scheduler"
	"github.com/empezz5-crypto/mdmoney/internal/service/shorts"
	"github.com/empezz5-crypto/mdmoney/internal/service/transaction"
	"github.com/empezz5-crypto/mdmoney/pkg/logger"
	"github.com/empezz5-crypto/mdmoney/pkg/metrics"
	"github.com/empezz5-crypto/mdmoney/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})

	if err := validator.RegisterCustom(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	redisClient, err := redisrepo.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	m := metrics.New("mdmoney")

	scheduleRepo := redisrepo.NewScheduleRepository(redisClient)
	subscriptionRepo := redisrepo.NewSubscriptionRepository(redisClient)
	shortRepo := redisrepo.NewShortRepository(redisClient)
	accountRepo := redisrepo.NewAccountRepository(redisClient)
	transactionRepo := redisrepo.NewTransactionRepository(redisClient)
	budgetRepo := redisrepo.NewBudgetRepository(redisClient)

	sender, err := push.NewWebPushSender(
		cfg.Secrets.VAPIDPublicKey,
		cfg.Secrets.VAPIDPrivateKey,
		cfg.Secrets.VAPIDSubject,
	)
	if err != nil {
		// The API stays up without a push transport; sends fail explicitly.
		log.Warn().Err(err).Msg("push transport disabled")
		sender = nil
	}

	pushSvc := push.NewService(subscriptionRepo, sender, cfg.Secrets.VAPIDPublicKey, log, m)
	schedulerSvc := scheduler.NewService(scheduleRepo, pushSvc, log, m)
	shortsSvc := shorts.NewService(shortRepo, cfg.Secrets.N8NWebhookURL, log)
	accountSvc := account.NewService(accountRepo)
	transactionSvc := transaction.NewService(transactionRepo)
	budgetSvc := budget.NewService(budgetRepo, transactionRepo)

	bankClient := bank.NewClient(cfg.Bank, cfg.Secrets.KBClientID, cfg.Secrets.KBClientSecret)
	bankSvc := bank.NewService(bankClient, accountRepo, transactionRepo, cfg.Bank.SyncDays, log, m)

	aiSvc := ai.NewService(cfg.AI, cfg.Secrets.OpenAIKey, cfg.Secrets.YouTubeKey, log)

	engine := router.New(router.Dependencies{
		Config:      cfg,
		Logger:      log,
		Metrics:     m,
		Health:      handler.NewHandler(redisClient),
		Push:        pushhandler.NewHandler(pushSvc, schedulerSvc, scheduleRepo, cfg.Secrets.PushCronSecret),
		Shorts:      shortshandler.NewHandler(shortsSvc),
		Accounts:    accounthandler.NewHandler(accountSvc),
		Transaction: txhandler.NewHandler(transactionSvc),
		Budgets:     budgethandler.NewHandler(budgetSvc),
		Bank:        bankhandler.NewHandler(bankSvc),
		AI:          aihandler.NewHandler(aiSvc),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Scheduler.Enabled {
		worker := scheduler.NewWorker(schedulerSvc, cfg.Scheduler.TickInterval, log)
		go worker.Start(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
