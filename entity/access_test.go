package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backstage/entity"
)

func TestAccessFlagsFor(t *testing.T) {
	testCases := []struct {
		ticketType entity.TicketType
		expected   entity.AccessFlags
	}{
		{entity.TicketTypeStandard, entity.AccessFlags{Basic: true, Concert: true, Premium: true}},
		{entity.TicketTypeVIP, entity.AccessFlags{Basic: true, Concert: true, Premium: true, VIP: true}},
		{entity.TicketTypeBackstage, entity.AccessFlags{Basic: true, Concert: true, Premium: true, VIP: true, Backstage: true}},
		{entity.TicketTypeBandPass, entity.AccessFlags{Basic: true, Concert: true, Premium: true, VIP: true, Backstage: true}},
		{entity.TicketTypeAdminPass, entity.AccessFlags{Basic: true, Concert: true, Premium: true, VIP: true, Backstage: true}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.ticketType), func(t *testing.T) {
			flags := entity.AccessFlagsFor(tc.ticketType)
			assert.Equal(t, tc.expected, flags)
			assert.True(t, flags.Concert, "every ticket grants concert access")
		})
	}
}

func TestAggregateAccess(t *testing.T) {
	active := func(ticketType entity.TicketType) entity.Ticket {
		return entity.Ticket{Type: ticketType, Status: entity.TicketStatusActive}
	}
	cancelled := func(ticketType entity.TicketType) entity.Ticket {
		return entity.Ticket{Type: ticketType, Status: entity.TicketStatusCancelled}
	}

	testCases := []struct {
		name     string
		role     entity.Role
		tickets  []entity.Ticket
		expected entity.UserAccess
	}{
		{
			name:     "fan_without_tickets",
			role:     entity.RoleFan,
			expected: entity.UserAccess{},
		},
		{
			name:     "standard_ticket",
			role:     entity.RoleFan,
			tickets:  []entity.Ticket{active(entity.TicketTypeStandard)},
			expected: entity.UserAccess{HasPremiumAccess: true},
		},
		{
			name:     "vip_ticket",
			role:     entity.RoleVIPFan,
			tickets:  []entity.Ticket{active(entity.TicketTypeVIP)},
			expected: entity.UserAccess{HasVIPAccess: true, HasPremiumAccess: true},
		},
		{
			name:     "backstage_ticket",
			role:     entity.RoleFan,
			tickets:  []entity.Ticket{active(entity.TicketTypeBackstage)},
			expected: entity.UserAccess{HasVIPAccess: true, HasPremiumAccess: true, HasBackstageAccess: true},
		},
		{
			name:     "cancelled_tickets_do_not_count",
			role:     entity.RoleFan,
			tickets:  []entity.Ticket{cancelled(entity.TicketTypeBackstage), active(entity.TicketTypeStandard)},
			expected: entity.UserAccess{HasPremiumAccess: true},
		},
		{
			name:     "band_always_has_everything",
			role:     entity.RoleBand,
			expected: entity.UserAccess{HasVIPAccess: true, HasPremiumAccess: true, HasBackstageAccess: true},
		},
		{
			name:     "admin_always_has_everything",
			role:     entity.RoleAdmin,
			tickets:  []entity.Ticket{cancelled(entity.TicketTypeStandard)},
			expected: entity.UserAccess{HasVIPAccess: true, HasPremiumAccess: true, HasBackstageAccess: true},
		},
		{
			name:     "moderator_is_not_privileged",
			role:     entity.RoleModerator,
			expected: entity.UserAccess{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, entity.AggregateAccess(tc.role, tc.tickets))
		})
	}
}

func TestAccessFlags_Describe(t *testing.T) {
	assert.Equal(t, "No access", entity.AccessFlags{}.Describe())
	assert.Equal(t, "Basic + Concert + Premium", entity.AccessFlagsFor(entity.TicketTypeStandard).Describe())
	assert.Equal(t, "Basic + Concert + Premium + VIP + Backstage", entity.AccessFlagsFor(entity.TicketTypeBackstage).Describe())
}
