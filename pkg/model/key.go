package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Key is an identifier that the bot API sends either as a JSON number or a
// JSON string. It is kept in its textual form.
type Key string

// UnmarshalJSON implements json.Unmarshaler.
func (k *Key) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*k = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*k = Key(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("key must be a string or number: %w", err)
	}
	*k = Key(n.String())
	return nil
}

// MarshalJSON encodes numeric keys as numbers and everything else as strings.
func (k Key) MarshalJSON() ([]byte, error) {
	if id, ok := k.Int64(); ok {
		return []byte(strconv.FormatInt(id, 10)), nil
	}
	return json.Marshal(string(k))
}

// Int64 returns the key as an integer when it is numeric.
func (k Key) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(k), 10, 64)
	return n, err == nil
}

// String returns the textual key.
func (k Key) String() string {
	return string(k)
}

// NamePair is one entry of a name-lookup list: an identifier and its
// human-readable label.
type NamePair struct {
	Key   Key    `json:"key"`
	Value string `json:"value"`
}

// LinkMap maps a display name to the identifier of a linked entity
// (message parents and children).
type LinkMap map[string]Key
