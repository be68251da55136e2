package usecases

import (
	"fmt"

	"github.com/google/uuid"

	"nomadly/internal/application/registration/registrar"
)

// Registrant identities are synthesized, never the real user. The registrar
// requires a plausible contact record; we derive one from a random UUID so
// two owners never collide and nothing links back to the user.

var identityFirstNames = []string{
	"Alex", "Casey", "Jordan", "Morgan", "Riley", "Sam", "Taylor", "Quinn",
	"Avery", "Drew", "Jamie", "Reese", "Skyler", "Blake", "Cameron", "Dana",
}

var identityLastNames = []string{
	"Reed", "Hayes", "Brooks", "Lane", "Parker", "Hale", "Monroe", "Sloan",
	"Vale", "Frost", "Mercer", "Quill", "Stone", "Marsh", "Bell", "Cole",
}

// synthesizeIdentity builds privacy-preserving contact details for an owner.
// contactEmail is the user-provided address for service mail; the rest of
// the identity is generated.
func synthesizeIdentity(contactEmail string) registrar.ContactDetails {
	u := uuid.New()
	first := identityFirstNames[int(u[0])%len(identityFirstNames)]
	last := identityLastNames[int(u[1])%len(identityLastNames)]

	// Phone digits come from the UUID bytes so the number is stable for
	// the generated identity but carries no user information.
	phone := fmt.Sprintf("+1.555%03d%04d", int(u[2])%1000, (int(u[3])<<8|int(u[4]))%10000)

	if contactEmail == "" {
		contactEmail = fmt.Sprintf("registrant-%s@privacy.invalid", u.String()[:8])
	}

	return registrar.ContactDetails{
		FirstName:   first,
		LastName:    last,
		Email:       contactEmail,
		Phone:       phone,
		Street:      fmt.Sprintf("%d Market Street", 100+int(u[5])%800),
		City:        "Dover",
		ZipCode:     "19901",
		CountryCode: "US",
	}
}
