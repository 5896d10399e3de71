package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"camerastore/internal/config"
	"camerastore/internal/handler"
	"camerastore/internal/infra/db"
	"camerastore/internal/infra/events"
	"camerastore/internal/infra/payment"
	infraRepo "camerastore/internal/infra/repository"
	"camerastore/internal/server"
	"camerastore/internal/usecase"
	"camerastore/internal/validator"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var autoMigrate bool

type publisher interface {
	usecase.EventPublisher
	Close(ctx context.Context) error
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run the schema migration before serving")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	lg := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//DB接続（リトライあり）
	database, err := db.Connect(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			lg.Warnf("close database: %v", err)
		}
	}()
	if autoMigrate {
		if err := database.Migrate(); err != nil {
			return err
		}
	}

	//注文イベント（ブローカー未設定なら送らない）
	var pub publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(events.KafkaOptions{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		}, lg)
		if err != nil {
			return err
		}
		pub = kp
	}
	defer func() {
		fctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := pub.Close(fctx); err != nil {
			lg.Warnf("close event publisher: %v", err)
		}
	}()

	verifier, err := payment.NewVerifier(cfg)
	if err != nil {
		return err
	}

	//Repository（GORM実装）
	gdb := database.Gorm
	userRepo := infraRepo.NewUserGormRepository(gdb)
	productRepo := infraRepo.NewProductGormRepository(gdb)
	cartRepo := infraRepo.NewCartGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)

	//Usecase
	authUC := usecase.NewAuthUsecase(cfg, userRepo, validator.NewAuthValidator(userRepo), lg)
	productUC := usecase.NewProductUsecase(productRepo, auditRepo, lg)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)
	orderUC := usecase.NewOrderUsecase(usecase.OrderUsecaseDeps{
		Tx:        txm,
		Orders:    orderRepo,
		Carts:     cartRepo,
		Products:  productRepo,
		Verifier:  verifier,
		Publisher: pub,
		Numbers:   usecase.NewOrderNumberGenerator(cfg.Location()),
		Policy:    usecase.OrderPolicy{StrictAdminTransitions: cfg.StrictAdminTransitions},
		Logger:    lg,
	})

	e := server.New(cfg, lg)
	server.RegisterRoutes(e, cfg, userRepo, database, server.Handlers{
		Auth:    handler.NewAuthHandler(authUC),
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(orderUC),
		Admin:   handler.NewAdminHandler(productUC, auditUC),
	})

	return server.Run(ctx, e, ":"+cfg.Port, shutdownTimeout)
}
