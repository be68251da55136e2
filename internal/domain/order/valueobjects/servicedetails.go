package valueobjects

// NameserverChoice selects how a registered domain's nameservers are set up.
type NameserverChoice string

const (
	// NameserverChoiceManagedDNS creates a managed DNS zone and uses its
	// assigned nameservers.
	NameserverChoiceManagedDNS NameserverChoice = "managed-dns"
	// NameserverChoiceRegistrarDefault keeps the registrar's default set.
	NameserverChoiceRegistrarDefault NameserverChoice = "registrar-default"
	// NameserverChoiceCustom uses a user-supplied nameserver list.
	NameserverChoiceCustom NameserverChoice = "custom"
)

func (c NameserverChoice) IsValid() bool {
	switch c {
	case NameserverChoiceManagedDNS, NameserverChoiceRegistrarDefault, NameserverChoiceCustom:
		return true
	default:
		return false
	}
}

func (c NameserverChoice) String() string {
	return string(c)
}

// ServiceDetails carries the fulfillment parameters of a domain_registration
// order. Empty for wallet deposits.
type ServiceDetails struct {
	DomainName        string           `json:"domain_name,omitempty"`
	NameserverChoice  NameserverChoice `json:"nameserver_choice,omitempty"`
	CustomNameservers []string         `json:"custom_nameservers,omitempty"`
	ContactEmail      string           `json:"contact_email,omitempty"`
}
