// Package payload parses JSON-in-string fields the backend embeds in records.
package payload

import (
	"encoding/json"
	"strings"
)

type Address struct {
	Name       string `json:"name,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// ParseAddress decodes a shipping_address field. Anything that is not a JSON
// object is kept verbatim in Address.
func ParseAddress(raw string) Address {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Address{}
	}
	var a Address
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), &a); err == nil {
			if a.Address == "" {
				a.Address = a.line()
			}
			return a
		}
	}
	return Address{Address: raw}
}

func (a Address) line() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// String renders the address on one line.
func (a Address) String() string {
	parts := make([]string, 0, 2)
	if a.Address != "" {
		parts = append(parts, a.Address)
	}
	if l := a.line(); l != "" && l != a.Address {
		parts = append(parts, l)
	}
	return strings.Join(parts, ", ")
}
