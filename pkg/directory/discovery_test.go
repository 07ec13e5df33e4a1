package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLDAPURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		expected  *ServerInfo
		expectErr bool
	}{
		{
			name: "ldaps with explicit port",
			url:  "ldaps://dc1.example.org:3269",
			expected: &ServerInfo{
				Host: "dc1.example.org", Port: 3269, UseTLS: true,
				Priority: 0, Weight: 100, Source: "config",
			},
		},
		{
			name: "ldaps default port",
			url:  "ldaps://dc1.example.org",
			expected: &ServerInfo{
				Host: "dc1.example.org", Port: 636, UseTLS: true,
				Priority: 0, Weight: 100, Source: "config",
			},
		},
		{
			name: "ldap default port",
			url:  "ldap://dc1.example.org",
			expected: &ServerInfo{
				Host: "dc1.example.org", Port: 389, UseTLS: false,
				Priority: 0, Weight: 100, Source: "config",
			},
		},
		{
			name: "trailing path is ignored",
			url:  "ldap://dc1.example.org:389/dc=example,dc=org",
			expected: &ServerInfo{
				Host: "dc1.example.org", Port: 389, UseTLS: false,
				Priority: 0, Weight: 100, Source: "config",
			},
		},
		{name: "empty URL", url: "", expectErr: true},
		{name: "unsupported scheme", url: "https://dc1.example.org", expectErr: true},
		{name: "bad port", url: "ldap://dc1.example.org:abc", expectErr: true},
		{name: "port out of range", url: "ldap://dc1.example.org:70000", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := ParseLDAPURL(tt.url)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, server)
		})
	}
}

func TestServerInfoToURL(t *testing.T) {
	assert.Equal(t, "ldaps://dc1.example.org:636",
		ServerInfoToURL(&ServerInfo{Host: "dc1.example.org", Port: 636, UseTLS: true}))
	assert.Equal(t, "ldap://dc1.example.org:389",
		ServerInfoToURL(&ServerInfo{Host: "dc1.example.org", Port: 389, UseTLS: false}))
}

func TestSortServersByPriority(t *testing.T) {
	servers := []*ServerInfo{
		{Host: "c", Priority: 1, Weight: 50},
		{Host: "a", Priority: 0, Weight: 10},
		{Host: "d", Priority: 1, Weight: 100},
		{Host: "b", Priority: 0, Weight: 90},
	}

	sortServersByPriority(servers)

	// Lower priority first; within a priority, higher weight first.
	hosts := make([]string, len(servers))
	for i, s := range servers {
		hosts[i] = s.Host
	}
	assert.Equal(t, []string{"b", "a", "d", "c"}, hosts)
}

func TestValidateServerInfo(t *testing.T) {
	tests := []struct {
		name      string
		server    *ServerInfo
		expectErr bool
	}{
		{name: "valid", server: &ServerInfo{Host: "dc1.example.org", Port: 636}},
		{name: "nil", server: nil, expectErr: true},
		{name: "empty host", server: &ServerInfo{Port: 636}, expectErr: true},
		{name: "zero port", server: &ServerInfo{Host: "dc1.example.org"}, expectErr: true},
		{name: "port too large", server: &ServerInfo{Host: "dc1.example.org", Port: 65536}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServerInfo(tt.server)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
