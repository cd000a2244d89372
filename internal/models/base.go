package models

import (
	"github.com/nazotronic/Tourify/internal/utils"
)

// IBase is implemented by every stored document; db.InsertOne relies on it
// to assign and reassign ids when inserts race on _id.
type IBase interface {
	GenIDIfEmpty()
	GenID()
	SetID(id utils.SixID)
}

// Base carries the document id and is embedded inline in every model.
type Base struct {
	ID utils.SixID `bson:"_id,omitempty" json:"id,omitempty"`
}

func (m *Base) GenID() {
	m.ID = utils.NewSixID()
}

func (m *Base) GenIDIfEmpty() {
	if m.ID == (utils.SixID{}) {
		m.GenID()
	}
}

func (m *Base) SetID(id utils.SixID) {
	m.ID = id
}
