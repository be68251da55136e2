package valueobjects

// NameserverMode records how a registered domain's nameservers were set up.
type NameserverMode string

const (
	NameserverModeManagedDNS       NameserverMode = "managed-dns"
	NameserverModeRegistrarDefault NameserverMode = "registrar-default"
	NameserverModeCustom           NameserverMode = "custom"
)

func (m NameserverMode) IsValid() bool {
	switch m {
	case NameserverModeManagedDNS, NameserverModeRegistrarDefault, NameserverModeCustom:
		return true
	default:
		return false
	}
}

func (m NameserverMode) String() string {
	return string(m)
}

// DomainStatus is the lifecycle state of a registered domain.
type DomainStatus string

const (
	DomainStatusActive  DomainStatus = "active"
	DomainStatusExpired DomainStatus = "expired"
)

func (s DomainStatus) IsValid() bool {
	return s == DomainStatusActive || s == DomainStatusExpired
}

func (s DomainStatus) String() string {
	return string(s)
}
