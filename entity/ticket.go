package entity

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/shortuuid/v3"
)

type TicketType string

const (
	TicketTypeStandard  TicketType = "STANDARD"
	TicketTypeVIP       TicketType = "VIP"
	TicketTypeBackstage TicketType = "BACKSTAGE"
	TicketTypeBandPass  TicketType = "BAND_PASS"
	TicketTypeAdminPass TicketType = "ADMIN_PASS"
)

// Purchasable reports whether the type can be obtained through a purchase. Passes are issued
// to staff only.
func (t TicketType) Purchasable() bool {
	switch t {
	case TicketTypeStandard, TicketTypeVIP, TicketTypeBackstage:
		return true
	}
	return false
}

func (t TicketType) Valid() bool {
	return t.Purchasable() || t == TicketTypeBandPass || t == TicketTypeAdminPass
}

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "ACTIVE"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

type Ticket struct {
	TicketID     string       `json:"ticket_id" db:"ticket_id"`
	TicketNumber string       `json:"ticket_number" db:"ticket_number"`
	Type         TicketType   `json:"type" db:"ticket_type"`
	Price        Money        `json:"price" db:"-"`
	Status       TicketStatus `json:"status" db:"status"`
	Access       AccessFlags  `json:"access" db:"-"`
	OwnerID      string       `json:"owner_id" db:"owner_id"`
	EventID      string       `json:"event_id" db:"event_id"`
	PurchaseDate time.Time    `json:"purchase_date" db:"purchase_date"`
	ArtifactRef  string       `json:"artifact_ref,omitempty" db:"artifact_ref"`
}

func (t Ticket) Active() bool {
	return t.Status == TicketStatusActive
}

// TicketView is a ticket annotated with a human readable description of what it grants.
type TicketView struct {
	Ticket
	AccessDescription string `json:"access_description"`
}

const ticketNumberEventFragmentLen = 6

// NewTicketNumber builds a system-wide unique ticket number: an event fragment for namespacing,
// a nanosecond timestamp and a random suffix from a crypto-backed UUID.
func NewTicketNumber(eventID string, now time.Time) string {
	// ASCII only, so the fragment can be cut at any byte
	fragment := strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToUpper(r)
		}
		return -1
	}, eventID)
	if len(fragment) > ticketNumberEventFragmentLen {
		fragment = fragment[:ticketNumberEventFragmentLen]
	}
	if fragment == "" {
		fragment = "EVT"
	}

	return "TKT-" + fragment + "-" + strings.ToUpper(strconv.FormatInt(now.UnixNano(), 36)) + "-" + shortuuid.New()
}
