package entity

import "github.com/shopspring/decimal"

// PricingCatalog maps purchasable ticket types to their unit price.
type PricingCatalog struct {
	currency string
	prices   map[TicketType]decimal.Decimal
}

func NewPricingCatalog(currency string, prices map[TicketType]decimal.Decimal) (PricingCatalog, error) {
	if currency == "" {
		return PricingCatalog{}, ErrValidation.WithMessage("currency must be set")
	}

	catalog := PricingCatalog{currency: currency, prices: make(map[TicketType]decimal.Decimal, len(prices))}
	for ticketType, price := range prices {
		if !ticketType.Purchasable() {
			return PricingCatalog{}, ErrValidation.WithMessage("ticket type %s cannot be priced", ticketType)
		}
		if price.IsNegative() {
			return PricingCatalog{}, ErrValidation.WithMessage("price for %s must not be negative", ticketType)
		}
		catalog.prices[ticketType] = price
	}

	return catalog, nil
}

func (c PricingCatalog) Currency() string {
	return c.currency
}

func (c PricingCatalog) IsPurchasable(t TicketType) bool {
	_, ok := c.prices[t]
	return ok && t.Purchasable()
}

func (c PricingCatalog) UnitPrice(t TicketType) (Money, error) {
	if !c.IsPurchasable(t) {
		return Money{}, ErrTicketTypeNotPurchasable.WithMessage("ticket type %q cannot be purchased", t)
	}
	return Money{Amount: c.prices[t], Currency: c.currency}, nil
}

// ForEvent overlays the event's per-tier prices on top of the catalog defaults.
func (c PricingCatalog) ForEvent(event Event) PricingCatalog {
	if len(event.Prices) == 0 {
		return c
	}

	merged := make(map[TicketType]decimal.Decimal, len(c.prices))
	for ticketType, price := range c.prices {
		merged[ticketType] = price
	}
	for ticketType, price := range event.Prices {
		if ticketType.Purchasable() {
			merged[ticketType] = price
		}
	}

	return PricingCatalog{currency: c.currency, prices: merged}
}
