package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// number decodes a JSON number or a numeric string, as sent by HTML forms.
// Any other value decodes to NaN so the validator reports the field as not a
// finite number together with the rest of the payload's violations.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f = math.NaN()
	}
	*n = number(f)
	return nil
}

func (n *number) ptr() *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}
