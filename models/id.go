package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sync"

	"github.com/speps/go-hashids/v2"
)

// ID is a merchant id that leaves the service as an opaque hash.
type ID int64

var (
	hasherMu sync.RWMutex
	dbHash   *hashids.HashID
)

// InitIDHasher must run before any ID is encoded.
func InitIDHasher(salt string) error {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 16
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return err
	}
	hasherMu.Lock()
	dbHash = h
	hasherMu.Unlock()
	return nil
}

func hasher() (*hashids.HashID, error) {
	hasherMu.RLock()
	defer hasherMu.RUnlock()
	if dbHash == nil {
		return nil, errors.New("id hasher is not initialised")
	}
	return dbHash, nil
}

func (id ID) String() string {
	s, err := id.Encode()
	if err != nil {
		return ""
	}
	return s
}

func (id ID) Encode() (string, error) {
	h, err := hasher()
	if err != nil {
		return "", err
	}
	return h.EncodeInt64([]int64{int64(id)})
}

func DecodeID(s string) (ID, error) {
	h, err := hasher()
	if err != nil {
		return 0, err
	}
	result, err := h.DecodeInt64WithError(s)
	if err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, errors.New("invalid ID")
	}
	return ID(result[0]), nil
}

// MarshalJSON implements the encoding json interface.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == 0 {
		return json.Marshal(nil)
	}
	result, err := id.Encode()
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

// UnmarshalJSON implements the encoding json interface.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*id = 0
		return nil
	}
	decoded, err := DecodeID(s)
	if err != nil {
		return err
	}
	*id = decoded
	return nil
}

// Scan implements the Scanner interface.
func (id *ID) Scan(value interface{}) error {
	if value == nil {
		*id = 0
		return nil
	}

	switch v := value.(type) {
	case int64:
		*id = ID(v)
	case []byte:
		return id.UnmarshalJSON(v)
	default:
		return errors.New("unexpected type for ID")
	}
	return nil
}

// Value implements the driver Valuer interface.
func (id ID) Value() (driver.Value, error) {
	return int64(id), nil
}
