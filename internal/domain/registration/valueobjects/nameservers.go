package valueobjects

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MinNameservers is the RFC-mandated minimum per domain.
	MinNameservers = 2
	// MaxNameservers is the registrar-imposed maximum per domain.
	MaxNameservers = 4
	// maxHostnameLength per RFC 1035.
	maxHostnameLength = 253
)

var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Nameservers is an ordered, validated list of nameserver hostnames. It is
// stored as a typed list at the persistence boundary; encoding happens once
// in the persistence adapter, never per call site.
type Nameservers struct {
	hosts []string
}

// ValidateHostname checks a single nameserver hostname: non-empty FQDN,
// RFC-compliant labels, at most 253 characters.
func ValidateHostname(hostname string) error {
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return fmt.Errorf("hostname cannot be empty")
	}
	if len(hostname) > maxHostnameLength {
		return fmt.Errorf("hostname too long (max %d characters, got %d)", maxHostnameLength, len(hostname))
	}
	if strings.Contains(hostname, "..") {
		return fmt.Errorf("consecutive dots not allowed: %s", hostname)
	}
	if !strings.Contains(hostname, ".") {
		return fmt.Errorf("nameserver must be fully qualified: %s", hostname)
	}
	if !hostnamePattern.MatchString(hostname) {
		return fmt.Errorf("invalid hostname format: %s", hostname)
	}
	return nil
}

// NewNameservers validates and normalizes a nameserver list. Blank entries
// are dropped before the count check; duplicates are rejected.
func NewNameservers(hosts []string) (Nameservers, error) {
	cleaned := make([]string, 0, len(hosts))
	seen := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if err := ValidateHostname(h); err != nil {
			return Nameservers{}, err
		}
		if seen[h] {
			return Nameservers{}, fmt.Errorf("duplicate nameserver: %s", h)
		}
		seen[h] = true
		cleaned = append(cleaned, h)
	}

	if len(cleaned) < MinNameservers {
		return Nameservers{}, fmt.Errorf("at least %d nameservers required, got %d", MinNameservers, len(cleaned))
	}
	if len(cleaned) > MaxNameservers {
		return Nameservers{}, fmt.Errorf("maximum %d nameservers allowed, got %d", MaxNameservers, len(cleaned))
	}

	return Nameservers{hosts: cleaned}, nil
}

// Hosts returns a copy of the ordered hostname list.
func (n Nameservers) Hosts() []string {
	out := make([]string, len(n.hosts))
	copy(out, n.hosts)
	return out
}

func (n Nameservers) Len() int {
	return len(n.hosts)
}

func (n Nameservers) String() string {
	return strings.Join(n.hosts, ",")
}
