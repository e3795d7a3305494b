package config

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/shopspring/decimal"

	"backstage/entity"
)

type Config struct {
	HTTPAddr       string `long:"http-addr" env:"HTTP_ADDR" default:":8080" description:"HTTP listen address"`
	PostgresURL    string `long:"postgres-url" env:"POSTGRES_URL" required:"true" description:"Postgres connection string"`
	RedisAddr      string `long:"redis-addr" env:"REDIS_ADDR" required:"true" description:"Redis address"`
	GatewayAddr    string `long:"gateway-addr" env:"GATEWAY_ADDR" required:"true" description:"Address of the receipts, spreadsheets and files APIs"`
	JaegerEndpoint string `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT" description:"Jaeger collector endpoint, defaults to the gateway"`
	Environment    string `long:"environment" env:"ENVIRONMENT" default:"development" description:"Deployment environment"`

	CollaboratorToken string `long:"collaborator-token" env:"COLLABORATOR_TOKEN" required:"true" description:"Shared secret of the auth proxy and the payment processor, sent as a Bearer token"`

	PaymentProcessorURL     string        `long:"payment-processor-url" env:"PAYMENT_PROCESSOR_URL" description:"Payment processor base URL, empty settles payments immediately"`
	PaymentProcessorTimeout time.Duration `long:"payment-processor-timeout" env:"PAYMENT_PROCESSOR_TIMEOUT" default:"5s" description:"Timeout of checkout session creation"`

	Currency       string `long:"currency" env:"CURRENCY" default:"EUR" description:"Currency of all prices"`
	PriceStandard  string `long:"price-standard" env:"PRICE_STANDARD" default:"89.50"`
	PriceVIP       string `long:"price-vip" env:"PRICE_VIP" default:"150.00"`
	PriceBackstage string `long:"price-backstage" env:"PRICE_BACKSTAGE" default:"299.00"`

	SeedDemoData     bool `long:"seed-demo-data" env:"SEED_DEMO_DATA" description:"Seed demo users and events on start-up"`
	DiagnosticErrors bool `long:"diagnostic-errors" env:"DIAGNOSTIC_ERRORS" description:"Include error details in responses"`
}

func Load(args []string) (Config, error) {
	var cfg Config
	if _, err := flags.ParseArgs(&cfg, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Production() bool {
	return c.Environment == "production"
}

func (c Config) PricingCatalog() (entity.PricingCatalog, error) {
	prices := map[entity.TicketType]decimal.Decimal{}
	for ticketType, raw := range map[entity.TicketType]string{
		entity.TicketTypeStandard:  c.PriceStandard,
		entity.TicketTypeVIP:       c.PriceVIP,
		entity.TicketTypeBackstage: c.PriceBackstage,
	} {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return entity.PricingCatalog{}, fmt.Errorf("invalid %s price %q: %w", ticketType, raw, err)
		}
		prices[ticketType] = price
	}

	return entity.NewPricingCatalog(c.Currency, prices)
}
