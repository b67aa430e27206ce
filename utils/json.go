package utils

import (
	"github.com/goccy/go-json"
)

// MarshalJSON encodes v with the faster goccy encoder
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// UnmarshalJSON decodes data into v with the faster goccy decoder
func UnmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
