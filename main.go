package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/clients"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"

	"backstage/app"
	"backstage/config"
	"backstage/db"
	"backstage/gateway"
	"backstage/pubsub"
	"backstage/ticketing"
	"backstage/tracing"
)

func main() {
	log.Init(logrus.InfoLevel)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	catalog, err := cfg.PricingCatalog()
	if err != nil {
		panic(err)
	}

	apiClients, err := clients.NewClients(cfg.GatewayAddr, func(ctx context.Context, req *http.Request) error {
		req.Header.Set("Correlation-ID", log.CorrelationIDFromContext(ctx))
		return nil
	})
	if err != nil {
		panic(err)
	}

	traceProvider, err := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint, cfg.GatewayAddr, cfg.Environment)
	if err != nil {
		panic(err)
	}

	dbConn, err := db.Open(cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	defer dbConn.Close()

	redisClient := pubsub.NewRedisClient(cfg.RedisAddr)
	defer redisClient.Close()

	var paymentProcessor ticketing.CheckoutProcessor
	if cfg.PaymentProcessorURL != "" {
		paymentProcessor = gateway.NewPaymentProcessorClient(cfg.PaymentProcessorURL)
	}

	application, err := app.New(
		app.Options{
			HTTPAddr:          cfg.HTTPAddr,
			CollaboratorToken: cfg.CollaboratorToken,
			Catalog:           catalog,
			PaymentProcessor:  paymentProcessor,
			PaymentTimeout:    cfg.PaymentProcessorTimeout,
			SeedDemoData:      cfg.SeedDemoData,
			DiagnosticErrors:  cfg.DiagnosticErrors && !cfg.Production(),
		},
		dbConn,
		redisClient,
		gateway.NewSpreadsheetsClient(apiClients),
		gateway.NewReceiptsClient(apiClients),
		gateway.NewFilesClient(apiClients),
		traceProvider,
	)
	if err != nil {
		panic(err)
	}

	if err := application.Run(ctx); err != nil {
		panic(err)
	}
}
