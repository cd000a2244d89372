package utils

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SixIDHookFunc is the signature of the NewSixID test hook. It returns an id
// and a boolean indicating whether to override the default random generation.
type SixIDHookFunc func() (id SixID, override bool)

// NewSixIDHook can be set by tests to make id generation deterministic.
var NewSixIDHook SixIDHookFunc

// SixID is a 6-byte entity id, stored in BSON as BinData with custom
// subtype 0x80 and rendered to clients as Crockford Base32.
type SixID [6]byte

// NewSixID returns a new random SixID.
func NewSixID() SixID {
	if NewSixIDHook != nil {
		if id, override := NewSixIDHook(); override {
			return id
		}
	}
	var id SixID
	if _, err := rand.Read(id[:]); err != nil {
		for i := range id {
			id[i] = 0
		}
	}
	return id
}

// IsZero reports whether the id is the zero value.
func (u SixID) IsZero() bool {
	return u == SixID{}
}

const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var crockfordDecodeMap map[byte]byte

func init() {
	crockfordDecodeMap = make(map[byte]byte, 40)
	for i := range crockfordAlphabet {
		crockfordDecodeMap[crockfordAlphabet[i]] = byte(i)
	}
	lower := strings.ToLower(crockfordAlphabet)
	for i := range lower {
		if i >= 10 {
			crockfordDecodeMap[lower[i]] = byte(i)
		}
	}
	// Commonly confused characters decode leniently.
	crockfordDecodeMap['o'] = crockfordDecodeMap['O']
	crockfordDecodeMap['i'] = crockfordDecodeMap['1']
	crockfordDecodeMap['l'] = crockfordDecodeMap['1']
}

// String returns the Crockford Base32 (uppercase) representation.
// 6 bytes = 48 bits = 10 Base32 characters.
func (u SixID) String() string {
	result := make([]byte, 10)
	var bits, offset uint
	resultIndex := 0
	for i := 0; i < 6; i++ {
		bits |= uint(u[i]) << offset
		offset += 8
		for offset >= 5 {
			result[resultIndex] = crockfordAlphabet[bits&0x1F]
			resultIndex++
			bits >>= 5
			offset -= 5
		}
	}
	if offset > 0 {
		result[resultIndex] = crockfordAlphabet[bits&0x1F]
		resultIndex++
	}
	return string(result[:resultIndex])
}

// ParseSixID parses the Crockford Base32 representation of a SixID.
func ParseSixID(s string) (SixID, error) {
	if s == "" {
		return SixID{}, errors.New("empty SixID string")
	}
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	if len(s) != 10 {
		return SixID{}, errors.New("invalid SixID: string length must be 10")
	}

	var bits uint64
	var offset uint
	var id SixID
	byteIndex := 0
	for i := 0; i < 10; i++ {
		val, ok := crockfordDecodeMap[s[i]]
		if !ok {
			return SixID{}, errors.New("invalid character in SixID")
		}
		bits |= uint64(val) << offset
		offset += 5
		for offset >= 8 && byteIndex < 6 {
			id[byteIndex] = byte(bits & 0xFF)
			byteIndex++
			bits >>= 8
			offset -= 8
		}
	}
	if byteIndex != 6 {
		return SixID{}, errors.New("invalid SixID: could not decode 6 bytes")
	}
	return id, nil
}

// MarshalBSONValue stores the id as BinData with custom subtype 0x80.
func (u SixID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(primitive.Binary{Subtype: 0x80, Data: u[:]})
}

// UnmarshalBSONValue restores the id from BinData with subtype 0x80.
func (u *SixID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull {
		*u = SixID{}
		return nil
	}
	if t != bson.TypeBinary {
		return errors.New("invalid BSON type for SixID: expected binary")
	}
	var bin primitive.Binary
	if err := bson.UnmarshalValue(t, data, &bin); err != nil {
		return err
	}
	if bin.Subtype != 0x80 || len(bin.Data) != 6 {
		return errors.New("invalid BSON binary data for SixID: incorrect subtype or length")
	}
	copy((*u)[:], bin.Data)
	return nil
}

// MarshalJSON renders the id as a Crockford Base32 JSON string.
func (u SixID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON parses the id from a Crockford Base32 JSON string.
func (u *SixID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSixID(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
