package types

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleUser  Role = "user"
)

var Roles = []Role{RoleAdmin, RoleStaff, RoleUser}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleUser:
		return true
	}
	return false
}

// CanReview reports whether the role may approve or reject requests and manage appointments.
func (r Role) CanReview() bool {
	return r == RoleAdmin || r == RoleStaff
}

// HomePath is where a signed in user of this role lands.
func (r Role) HomePath() string {
	if r == RoleAdmin {
		return "/admin/overview"
	}
	return "/user/dashboard"
}

// Identity is the resolved caller attached to the request context.
type Identity struct {
	UserID   string
	Email    string
	FullName string
	Role     Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

type Profile struct {
	ID                     string    `db:"id" json:"id"`
	Email                  *string   `db:"email" json:"email"`
	FullName               *string   `db:"full_name" json:"fullName"`
	Role                   Role      `db:"role" json:"role"`
	Address                *string   `db:"address" json:"address"`
	Barangay               *string   `db:"barangay" json:"barangay"`
	Purok                  *string   `db:"purok" json:"purok"`
	HouseholdSize          *int      `db:"household_size" json:"householdSize"`
	EmergencyContactName   *string   `db:"emergency_contact_name" json:"emergencyContactName"`
	EmergencyContactNumber *string   `db:"emergency_contact_number" json:"emergencyContactNumber"`
	SignatureKey           *string   `db:"signature_key" json:"signatureKey,omitempty"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time `db:"updated_at" json:"updatedAt"`
}

func (p *Profile) DisplayName() string {
	if p.FullName != nil && strings.TrimSpace(*p.FullName) != "" {
		return *p.FullName
	}
	if p.Email != nil {
		return *p.Email
	}
	return p.ID
}

func (p *Profile) Identity() *Identity {
	id := &Identity{UserID: p.ID, Role: p.Role}
	if p.Email != nil {
		id.Email = *p.Email
	}
	if p.FullName != nil {
		id.FullName = *p.FullName
	}
	if !id.Role.Valid() {
		id.Role = RoleUser
	}
	return id
}

type ProfileForm struct {
	FullName               string `form:"full_name" validate:"required,max=150"`
	Address                string `form:"address" validate:"max=255"`
	Purok                  string `form:"purok" validate:"max=50"`
	HouseholdSize          string `form:"household_size" validate:"omitempty,numeric"`
	EmergencyContactName   string `form:"emergency_contact_name" validate:"max=150"`
	EmergencyContactNumber string `form:"emergency_contact_number" validate:"max=30"`
}

type RoleUpdate struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
