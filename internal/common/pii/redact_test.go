package pii

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mobile", "call me on 9876543210", "call me on ****XXXX"},
		{"mobile with country code", "+91 9876543210 please", "****XXXX please"},
		{"pan", "PAN is ABCDE1234F.", "PAN is XXXXX****X."},
		{"both", "9876543210 / ABCDE1234F", "****XXXX / XXXXX****X"},
		{"lowercase pan", "my pan is abcde1234f", "my pan is XXXXX****X"},
		{"gstin", "27ABCDE1234F1Z5", "27XXXXX****X1Z5"},
		{"lowercase gstin", "gst 07aadcs8891h1zu ok", "gst 07XXXXX****X1zu ok"},
		{"gstin in sentence", "GSTIN: 07AADCS8891H1ZU.", "GSTIN: 07XXXXX****X1ZU."},
		{"short number left alone", "12345", "12345"},
		{"landline prefix left alone", "0123456789", "0123456789"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Redact(tt.in))
		})
	}
}

func TestRedactMap(t *testing.T) {
	in := map[string]interface{}{
		"mobile": "9876543210",
		"gstin":  "07AADCS8891H1ZU",
		"amount": 25.0,
		"closed": true,
	}

	out := RedactMap(in)

	assert.Equal(t, MaskedMobile, out["mobile"])
	assert.Equal(t, "07XXXXX****X1ZU", out["gstin"])
	assert.Equal(t, 25.0, out["amount"])
	assert.Equal(t, true, out["closed"])
	assert.Equal(t, "9876543210", in["mobile"], "input must not be mutated")
	assert.Nil(t, RedactMap(nil))
}
