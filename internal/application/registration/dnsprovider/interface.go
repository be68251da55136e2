package dnsprovider

import "context"

// Client provisions managed DNS zones for the managed-dns nameserver mode.
type Client interface {
	// CreateZone creates (or returns the existing) zone for the domain and
	// reports the provider-assigned nameservers.
	CreateZone(ctx context.Context, domainName string) (*Zone, error)

	CreateRecord(ctx context.Context, zoneID string, record Record) (string, error)
}

type Zone struct {
	ZoneID      string
	Nameservers []string
}

// Record is one DNS record to create inside a zone.
type Record struct {
	Type    string
	Name    string
	Content string
	TTL     int
	Proxied bool
}
