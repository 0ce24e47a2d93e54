package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"192.168.1.47", "192.168.1.0"},
		{"172.16.50.255", "172.16.50.0"},
		{"::ffff:203.0.113.9", "203.0.113.0"},
		{"2001:db8:85a3::8a2e:370:7334", "2001:db8:85a3::"},
		{"::1", "::"},
		{"fe80::1%eth0", "fe80::"},
		{"", "unknown"},
		{"unknown", "unknown"},
		{"not-an-ip", "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.in))
		})
	}
}

func TestSuffixOnly(t *testing.T) {
	assert.Equal(t, "****6789", SuffixOnly("A123456789", 4))
	assert.Equal(t, "****", SuffixOnly("A12", 4))
	assert.Equal(t, "****", SuffixOnly("A12", -1))
}
