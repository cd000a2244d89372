package models

import (
	"time"

	"github.com/nazotronic/Tourify/internal/utils"
)

// Role distinguishes regular travellers from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// Preferences holds the traveller's saved tastes, used to seed
// catalog filters on first visit.
type Preferences struct {
	Type       []TourType   `bson:"type,omitempty" json:"type,omitempty"`
	Difficulty []Difficulty `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Tags       []string     `bson:"tags,omitempty" json:"tags,omitempty"`
	BudgetFrom *float64     `bson:"budget_from,omitempty" json:"budgetFrom,omitempty"`
	BudgetTo   *float64     `bson:"budget_to,omitempty" json:"budgetTo,omitempty"`
}

// Profile is the user-editable slice of an account. FullName and Email
// mirror the account fields so the profile can be rendered standalone.
type Profile struct {
	FullName    string       `bson:"full_name" json:"fullName"`
	Email       string       `bson:"email" json:"email"`
	Phone       string       `bson:"phone,omitempty" json:"phone,omitempty"`
	Avatar      string       `bson:"avatar,omitempty" json:"avatar,omitempty"` // S3 key
	Preferences *Preferences `bson:"preferences,omitempty" json:"preferences,omitempty"`
}

// User represents an account in the system.
type User struct {
	Base         `bson:",inline"`
	Email        string        `bson:"email" json:"email"`
	FullName     string        `bson:"full_name" json:"fullName"`
	PasswordHash string        `bson:"password" json:"-"` // bcrypt hash, never plaintext
	Role         Role          `bson:"role" json:"role"`
	Profile      *Profile      `bson:"profile,omitempty" json:"profile,omitempty"`
	Favourites   []utils.SixID `bson:"favourites" json:"favourites"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
