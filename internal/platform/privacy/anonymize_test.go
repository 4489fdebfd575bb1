package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ipv4", "192.168.1.47", "192.168.1.0"},
		{"ipv4 already truncated", "10.0.0.0", "10.0.0.0"},
		{"ipv4 high last octet", "172.16.50.255", "172.16.50.0"},
		{"ipv4 localhost", "127.0.0.1", "127.0.0.0"},
		{"ipv4-mapped ipv6", "::ffff:192.168.1.5", "192.168.1.0"},
		{"ipv6 full", "2001:db8:85a3:0000:0000:8a2e:0370:7334", "2001:0db8:85a3::"},
		{"ipv6 compressed", "2001:db8:85a3::8a2e:370:7334", "2001:0db8:85a3::"},
		{"ipv6 loopback", "::1", "0000:0000:0000::"},
		{"ipv6 link-local", "fe80::1", "fe80:0000:0000::"},
		{"empty", "", "unknown"},
		{"unknown passthrough", "unknown", "unknown"},
		{"garbage", "not-an-ip", "invalid"},
		{"partial ipv4", "192.168.1", "invalid"},
		{"host:port", "192.168.1.1:8080", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.input))
		})
	}
}

func TestAnonymizeIPCollapsesNetwork(t *testing.T) {
	// Hosts in one /24 become indistinguishable, hosts in different /24s stay apart.
	for _, ip := range []string{"192.168.1.1", "192.168.1.100", "192.168.1.255"} {
		assert.Equal(t, "192.168.1.0", AnonymizeIP(ip))
	}
	assert.NotEqual(t, AnonymizeIP("192.168.1.47"), AnonymizeIP("192.168.2.47"))
}
