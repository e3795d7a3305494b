package entity

import (
	"strings"

	"github.com/samber/lo"
)

type AccessFlags struct {
	Basic     bool `json:"basic"`
	Concert   bool `json:"concert"`
	Premium   bool `json:"premium"`
	VIP       bool `json:"vip"`
	Backstage bool `json:"backstage"`
}

var fullAccess = AccessFlags{Basic: true, Concert: true, Premium: true, VIP: true, Backstage: true}

var accessByTicketType = map[TicketType]AccessFlags{
	TicketTypeStandard:  {Basic: true, Concert: true, Premium: true},
	TicketTypeVIP:       {Basic: true, Concert: true, Premium: true, VIP: true},
	TicketTypeBackstage: fullAccess,
	TicketTypeBandPass:  fullAccess,
	TicketTypeAdminPass: fullAccess,
}

// AccessFlagsFor returns the fixed flags granted by a ticket type. Unknown types grant nothing.
func AccessFlagsFor(t TicketType) AccessFlags {
	return accessByTicketType[t]
}

func (f AccessFlags) Or(other AccessFlags) AccessFlags {
	return AccessFlags{
		Basic:     f.Basic || other.Basic,
		Concert:   f.Concert || other.Concert,
		Premium:   f.Premium || other.Premium,
		VIP:       f.VIP || other.VIP,
		Backstage: f.Backstage || other.Backstage,
	}
}

func (f AccessFlags) Describe() string {
	parts := make([]string, 0, 5)
	if f.Basic {
		parts = append(parts, "Basic")
	}
	if f.Concert {
		parts = append(parts, "Concert")
	}
	if f.Premium {
		parts = append(parts, "Premium")
	}
	if f.VIP {
		parts = append(parts, "VIP")
	}
	if f.Backstage {
		parts = append(parts, "Backstage")
	}
	if len(parts) == 0 {
		return "No access"
	}
	return strings.Join(parts, " + ")
}

// AggregateAccess derives a user's cached flags from the role and the tickets they hold.
// Cancelled tickets never contribute. BAND and ADMIN always get everything.
func AggregateAccess(role Role, tickets []Ticket) UserAccess {
	if role.HasFullAccess() {
		return UserAccess{HasVIPAccess: true, HasPremiumAccess: true, HasBackstageAccess: true}
	}

	flags := lo.Reduce(
		lo.Filter(tickets, func(t Ticket, _ int) bool { return t.Active() }),
		func(acc AccessFlags, t Ticket, _ int) AccessFlags { return acc.Or(AccessFlagsFor(t.Type)) },
		AccessFlags{},
	)

	return UserAccess{
		HasVIPAccess:       flags.VIP,
		HasPremiumAccess:   flags.VIP || flags.Premium,
		HasBackstageAccess: flags.Backstage,
	}
}
