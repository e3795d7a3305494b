package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	dbLib "backstage/db"
	"backstage/entity"
	"backstage/fixtures"
	"backstage/http"
	"backstage/pubsub"
	"backstage/pubsub/event"
	"backstage/pubsub/outbox"
	"backstage/ticketing"
)

type Options struct {
	HTTPAddr          string
	CollaboratorToken string
	Catalog           entity.PricingCatalog
	PaymentProcessor  ticketing.CheckoutProcessor
	PaymentTimeout    time.Duration
	SeedDemoData      bool
	DiagnosticErrors  bool
}

type App struct {
	db              *sqlx.DB
	service         *ticketing.Service
	watermillRouter *message.Router
	httpServer      *http.Server
	traceProvider   *tracesdk.TracerProvider
	seedDemoData    bool
}

func New(
	opts Options,
	db *sqlx.DB,
	redisClient *redis.Client,
	spreadsheetsService event.SpreadsheetsAPI,
	receiptsService event.ReceiptsService,
	filesService event.FilesAPI,
	traceProvider *tracesdk.TracerProvider,
) (App, error) {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher := pubsub.NewRedisPublisher(redisClient, watermillLogger)

	service := ticketing.NewService(
		dbLib.NewStore(db),
		opts.Catalog,
		ticketing.NewPaymentStrategy(opts.PaymentProcessor, opts.PaymentTimeout),
	)

	eventsHandler := event.NewHandler(
		spreadsheetsService,
		receiptsService,
		filesService,
		service,
	)

	postgresSubscriber, err := outbox.NewPostgresSubscriber(db, watermillLogger)
	if err != nil {
		return App{}, err
	}

	watermillRouter, err := pubsub.NewWatermillRouter(
		postgresSubscriber,
		redisPublisher,
		redisClient,
		eventsHandler,
		dbLib.NewDataLake(db),
		watermillLogger,
	)
	if err != nil {
		return App{}, fmt.Errorf("failed to create watermill router: %w", err)
	}

	httpServer := http.NewServer(opts.HTTPAddr, service, opts.CollaboratorToken, opts.DiagnosticErrors)

	return App{
		db:              db,
		service:         service,
		watermillRouter: watermillRouter,
		httpServer:      httpServer,
		traceProvider:   traceProvider,
		seedDemoData:    opts.SeedDemoData,
	}, nil
}

func (a App) Run(ctx context.Context) error {
	if err := dbLib.InitializeDatabaseSchema(a.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	if a.seedDemoData {
		if err := fixtures.Seed(ctx, a.service); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	log.FromContext(ctx).WithField("payment_strategy", a.service.PaymentStrategy()).Info("Starting backstage")

	g, ctx := errgroup.WithContext(ctx)

	if a.traceProvider != nil {
		g.Go(func() error {
			<-ctx.Done()
			return a.traceProvider.Shutdown(context.Background())
		})
	}

	g.Go(func() error {
		return a.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// the app is not healthy before the router is running
		<-a.watermillRouter.Running()

		return a.httpServer.Run(ctx)
	})

	return g.Wait()
}
