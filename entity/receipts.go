package entity

import "time"

type IssueReceiptRequest struct {
	TicketID       string
	Price          Money
	IdempotencyKey string
}

type IssueReceiptResponse struct {
	ReceiptNumber string    `json:"number"`
	IssuedAt      time.Time `json:"issued_at"`
}

// TicketArtifact is the document handed to the artifact generation collaborator.
type TicketArtifact struct {
	TicketID     string      `json:"ticket_id"`
	TicketNumber string      `json:"ticket_number"`
	EventID      string      `json:"event_id"`
	OwnerEmail   string      `json:"owner_email"`
	TicketType   TicketType  `json:"ticket_type"`
	Price        Money       `json:"price"`
	Access       AccessFlags `json:"access"`
}
