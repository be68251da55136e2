package valueobjects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHostname(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		wantErr  bool
	}{
		{"valid fqdn", "ns1.example.com", false},
		{"valid with hyphen", "ns-1.dns.example.net", false},
		{"valid with digits", "ns2.cloud9.io", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"not fully qualified", "localhost", true},
		{"consecutive dots", "ns1..example.com", true},
		{"leading hyphen label", "-ns1.example.com", true},
		{"trailing hyphen label", "ns1-.example.com", true},
		{"underscore", "ns_1.example.com", true},
		{"too long", strings.Repeat("a", 250) + ".com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHostname(tt.hostname)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewNameservers_NormalizesInput(t *testing.T) {
	ns, err := NewNameservers([]string{"  NS1.Example.COM ", "ns2.example.com", ""})
	require.NoError(t, err)

	assert.Equal(t, []string{"ns1.example.com", "ns2.example.com"}, ns.Hosts())
	assert.Equal(t, 2, ns.Len())
	assert.Equal(t, "ns1.example.com,ns2.example.com", ns.String())
}

func TestNewNameservers_CountBounds(t *testing.T) {
	_, err := NewNameservers([]string{"ns1.example.com"})
	assert.Error(t, err, "one nameserver is below the minimum")

	_, err = NewNameservers([]string{"", "  ", "ns1.example.com"})
	assert.Error(t, err, "blanks are dropped before the count check")

	_, err = NewNameservers([]string{
		"ns1.example.com", "ns2.example.com", "ns3.example.com",
		"ns4.example.com", "ns5.example.com",
	})
	assert.Error(t, err, "five nameservers exceed the maximum")

	ns, err := NewNameservers([]string{
		"ns1.example.com", "ns2.example.com", "ns3.example.com", "ns4.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, ns.Len())
}

func TestNewNameservers_RejectsDuplicates(t *testing.T) {
	_, err := NewNameservers([]string{"ns1.example.com", "NS1.EXAMPLE.COM"})
	assert.Error(t, err, "duplicates are detected after normalization")
}

func TestNameservers_HostsReturnsCopy(t *testing.T) {
	ns, err := NewNameservers([]string{"ns1.example.com", "ns2.example.com"})
	require.NoError(t, err)

	hosts := ns.Hosts()
	hosts[0] = "mutated.example.com"
	assert.Equal(t, []string{"ns1.example.com", "ns2.example.com"}, ns.Hosts())
}
