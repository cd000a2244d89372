package models

import (
	"time"

	"github.com/nazotronic/Tourify/internal/utils"
)

// SupportMessage is a message sent by a user to support staff.
// Answer is reserved for a future reply flow and is preserved untouched
// by read-state updates.
type SupportMessage struct {
	Base      `bson:",inline"`
	UserID    utils.SixID `bson:"user_id" json:"userId"`
	Message   string      `bson:"message" json:"message"`
	Answer    string      `bson:"answer,omitempty" json:"answer,omitempty"`
	Read      bool        `bson:"read" json:"read"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updatedAt"`
	CreatedAt time.Time   `bson:"created_at" json:"createdAt"`
}
