package valueobjects

// ServiceType distinguishes what a paid order buys.
type ServiceType string

const (
	ServiceTypeDomainRegistration ServiceType = "domain_registration"
	ServiceTypeWalletDeposit      ServiceType = "wallet_deposit"
	ServiceTypeOther              ServiceType = "other"
)

func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceTypeDomainRegistration, ServiceTypeWalletDeposit, ServiceTypeOther:
		return true
	default:
		return false
	}
}

func (t ServiceType) String() string {
	return string(t)
}
