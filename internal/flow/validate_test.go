package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsers(t *testing.T) {
	testCases := []struct {
		name    string
		parse   ParseFunc
		input   string
		want    any
		wantErr bool
	}{
		{name: "port ok", parse: ParsePort, input: " 443 ", want: 443},
		{name: "port zero", parse: ParsePort, input: "0", wantErr: true},
		{name: "port too big", parse: ParsePort, input: "65536", wantErr: true},
		{name: "port text", parse: ParsePort, input: "https", wantErr: true},
		{name: "address ok", parse: ParseAddress, input: "de.example.com", want: "de.example.com"},
		{name: "address with scheme", parse: ParseAddress, input: "https://x.io", wantErr: true},
		{name: "address empty", parse: ParseAddress, input: "  ", wantErr: true},
		{name: "username ok", parse: ParseUsername, input: "john_doe-1", want: "john_doe-1"},
		{name: "username short", parse: ParseUsername, input: "ab", wantErr: true},
		{name: "username spaces", parse: ParseUsername, input: "john doe", wantErr: true},
		{name: "traffic unlimited", parse: ParseTrafficGB, input: "0", want: int64(0)},
		{name: "traffic word", parse: ParseTrafficGB, input: "Unlimited", want: int64(0)},
		{name: "traffic gb", parse: ParseTrafficGB, input: "50", want: int64(50) << 30},
		{name: "traffic fraction", parse: ParseTrafficGB, input: "0,5", want: int64(1) << 29},
		{name: "traffic zero fraction", parse: ParseTrafficGB, input: "0.0", want: int64(0)},
		{name: "traffic below one byte", parse: ParseTrafficGB, input: "0.0000000001", wantErr: true},
		{name: "traffic negative", parse: ParseTrafficGB, input: "-1", wantErr: true},
		{name: "traffic text", parse: ParseTrafficGB, input: "lots", wantErr: true},
		{name: "days ok", parse: ParseDays, input: "30", want: 30},
		{name: "days zero", parse: ParseDays, input: "0", wantErr: true},
		{name: "days too long", parse: ParseDays, input: "3651", wantErr: true},
		{name: "country upper-cased", parse: ParseCountryCode, input: "de", want: "DE"},
		{name: "country long", parse: ParseCountryCode, input: "DEU", wantErr: true},
		{name: "email ok", parse: ParseEmail, input: "a@b.io", want: "a@b.io"},
		{name: "email with name", parse: ParseEmail, input: "Bob <a@b.io>", wantErr: true},
		{name: "telegram ok", parse: ParseTelegramID, input: "12345", want: int64(12345)},
		{name: "telegram negative", parse: ParseTelegramID, input: "-5", wantErr: true},
		{name: "one of canonical", parse: OneOf(SecurityLayers...), input: "tls", want: "TLS"},
		{name: "one of unknown", parse: OneOf(SecurityLayers...), input: "xtls", wantErr: true},
		{name: "range ok", parse: IntRange(1, 31), input: "31", want: 31},
		{name: "range low", parse: IntRange(1, 31), input: "0", wantErr: true},
		{name: "required trims", parse: Required(5), input: " abc ", want: "abc"},
		{name: "required too long", parse: Required(5), input: "abcdef", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.parse(tc.input)
			if tc.wantErr {
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
				assert.NotEmpty(t, vErr.Hint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseResource(t *testing.T) {
	r, err := ParseResource("host")
	require.NoError(t, err)
	assert.Equal(t, ResourceHost, r)

	_, err = ParseResource("inbound")
	assert.Error(t, err)
}
