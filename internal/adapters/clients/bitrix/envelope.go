// Package bitrix is the anti-corruption layer for the Bitrix24 REST API.
// It owns URL construction, the response envelope, pagination, error
// mapping to domain error kinds, and the lenient decoding of untyped result
// items into domain records.
package bitrix

import (
	"bytes"
	"encoding/json"
)

// Envelope is the JSON object every REST method answers with.
type Envelope struct {
	Result           json.RawMessage `json:"result"`
	Next             *int            `json:"next"`
	Total            *int            `json:"total"`
	Error            flexString      `json:"error"`
	ErrorDescription flexString      `json:"error_description"`
}

// HasNext reports whether the remote announced another page.
func (e *Envelope) HasNext() bool {
	return e.Next != nil
}

// decodeResult unmarshals the result member into v, keeping numbers as
// json.Number so ids survive without float formatting.
func (e *Envelope) decodeResult(v any) error {
	if len(e.Result) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(e.Result))
	dec.UseNumber()
	return dec.Decode(v)
}

// flexString accepts a JSON string, or any other JSON value kept verbatim.
// Null decodes to "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(data)
	}
	return nil
}
