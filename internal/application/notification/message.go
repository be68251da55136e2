package notification

import (
	"fmt"
	"strings"
)

// renderMessage builds the plain-text subject and body for an outcome. An
// unknown kind is an error so the caller can fall back to the minimal
// message instead of sending something misleading.
func renderMessage(o Outcome) (subject, body string, err error) {
	switch o.Kind {
	case OutcomeRegistrationSuccess:
		subject = fmt.Sprintf("Your domain %s is registered", o.DomainName)
		b := &strings.Builder{}
		fmt.Fprintf(b, "Good news! Your payment for order %s was confirmed and %s is now registered to you.\n", o.OrderID, o.DomainName)
		if len(o.Nameservers) > 0 {
			fmt.Fprintf(b, "Nameservers: %s\n", strings.Join(o.Nameservers, ", "))
		}
		body = b.String()

	case OutcomeDepositCredited:
		subject = "Wallet deposit received"
		body = fmt.Sprintf("Your deposit for order %s was confirmed. $%s has been credited to your wallet.\n", o.OrderID, o.CreditedUSD.StringFixed(2))

	case OutcomeOverpaidCredited:
		subject = "Overpayment credited"
		body = fmt.Sprintf("Order %s: you paid $%s more than required. The surplus was credited to your wallet.\n", o.OrderID, o.SurplusUSD.StringFixed(2))

	case OutcomeUnderpaidCredited:
		subject = "Payment received, amount short"
		body = fmt.Sprintf(
			"We received your payment for order %s, but it covers $%s of the $%s required. The $%s short remains due.\n"+
				"The amount received was credited to your wallet. Top up the difference or pay from your wallet balance to continue.\n",
			o.OrderID, o.CreditedUSD.StringFixed(2), o.AmountUSD.StringFixed(2), o.ShortfallUSD.StringFixed(2))

	case OutcomeRegistrationPending:
		subject = "Payment received, registration in progress"
		body = fmt.Sprintf(
			"Your payment for order %s is confirmed. Registration of %s is still in progress; we will keep retrying and let you know as soon as it completes.\n",
			o.OrderID, o.DomainName)

	case OutcomeRegistrationFailed:
		subject = "Payment received, registration needs attention"
		b := &strings.Builder{}
		fmt.Fprintf(b, "Your payment for order %s is confirmed, but registering %s did not complete.\n", o.OrderID, o.DomainName)
		if o.Reason != "" {
			fmt.Fprintf(b, "Reason: %s\n", o.Reason)
		}
		b.WriteString("Your funds are safe and our team has been alerted.\n")
		body = b.String()

	case OutcomeAwaitingConfirmation:
		subject = "Payment detected, awaiting confirmation"
		body = fmt.Sprintf("We detected your payment for order %s. Waiting for blockchain confirmation.\n", o.OrderID)

	default:
		return "", "", fmt.Errorf("no message template for outcome kind %q", o.Kind)
	}

	return subject, body, nil
}

// fallbackMessage is the minimal plain-text notice sent when normal message
// construction fails. It always carries the order id and amount so the user
// is never left without any acknowledgment.
func fallbackMessage(o Outcome) (subject, body string) {
	subject = fmt.Sprintf("Update on order %s", o.OrderID)
	body = fmt.Sprintf("We received an update for order %s (amount $%s). Contact support for details.\n", o.OrderID, o.AmountUSD.StringFixed(2))
	return subject, body
}
