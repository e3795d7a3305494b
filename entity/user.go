package entity

type Role string

const (
	RoleFan       Role = "FAN"
	RoleBand      Role = "BAND"
	RoleVIPFan    Role = "VIP_FAN"
	RoleBenefiz   Role = "BENEFIZ"
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFan, RoleBand, RoleVIPFan, RoleBenefiz, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// HasFullAccess reports roles that hold every access flag regardless of tickets.
func (r Role) HasFullAccess() bool {
	return r == RoleBand || r == RoleAdmin
}

// CanManageTickets reports roles allowed to cancel tickets owned by someone else.
func (r Role) CanManageTickets() bool {
	return r == RoleAdmin || r == RoleModerator
}

type User struct {
	UserID string `json:"user_id" db:"user_id"`
	Email  string `json:"email" db:"email"`
	Role   Role   `json:"role" db:"role"`
	UserAccess
}

// UserAccess is the cached projection written only by the access aggregation step.
type UserAccess struct {
	HasVIPAccess       bool `json:"has_vip_access" db:"has_vip_access"`
	HasPremiumAccess   bool `json:"has_premium_access" db:"has_premium_access"`
	HasBackstageAccess bool `json:"has_backstage_access" db:"has_backstage_access"`
}

func NewUser(userID, email string, role Role) (User, error) {
	if userID == "" {
		return User{}, ErrValidation.WithMessage("user id must be set")
	}
	if !role.Valid() {
		return User{}, ErrValidation.WithMessage("unknown role %q", role)
	}
	return User{UserID: userID, Email: email, Role: role}, nil
}
