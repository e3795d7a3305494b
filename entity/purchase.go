package entity

const (
	MinTicketsPerPurchase = 1
	MaxTicketsPerPurchase = 5
)

type PurchaseRequest struct {
	UserID     string
	EventID    string
	TicketType TicketType
	Quantity   int
}

// PurchaseCommand is a purchase request that passed validation.
type PurchaseCommand struct {
	User       User
	EventID    string
	TicketType TicketType
	Quantity   int
}

// ValidatePurchase runs the eligibility checks in a fixed order: role, quantity, ticket type.
// Resolving the user is the caller's job; a missing user never reaches this point.
func ValidatePurchase(user User, request PurchaseRequest, catalog PricingCatalog) (PurchaseCommand, error) {
	if user.Role == RoleBand {
		return PurchaseCommand{}, ErrRoleNotEligible.WithMessage("band members already hold full access")
	}
	if request.Quantity < MinTicketsPerPurchase || request.Quantity > MaxTicketsPerPurchase {
		return PurchaseCommand{}, ErrInvalidQuantity.WithMessage(
			"quantity must be between %d and %d, got %d",
			MinTicketsPerPurchase, MaxTicketsPerPurchase, request.Quantity,
		)
	}
	if !catalog.IsPurchasable(request.TicketType) {
		return PurchaseCommand{}, ErrTicketTypeNotPurchasable.WithMessage("ticket type %q cannot be purchased", request.TicketType)
	}
	if request.EventID == "" {
		return PurchaseCommand{}, ErrValidation.WithMessage("event id must be set")
	}

	return PurchaseCommand{
		User:       user,
		EventID:    request.EventID,
		TicketType: request.TicketType,
		Quantity:   request.Quantity,
	}, nil
}

type PurchaseResult struct {
	Tickets     []Ticket `json:"tickets"`
	TotalPrice  Money    `json:"total_price"`
	CheckoutURL string   `json:"checkout_url,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
}
