package domain

import "fmt"

type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusExpired    PaymentStatus = "expired"
)

var AllStatuses = []PaymentStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusExpired}

// route restricts a transition to one kind of payment.
type route int

const (
	anyRoute route = iota
	sameChainOnly
	crossChainOnly
)

// transitions is the complete lifecycle. Anything absent is illegal.
var transitions = map[PaymentStatus]map[PaymentStatus]route{
	StatusPending: {
		StatusCompleted:  sameChainOnly,
		StatusProcessing: crossChainOnly,
		StatusExpired:    anyRoute,
		StatusFailed:     anyRoute,
	},
	StatusProcessing: {
		StatusCompleted: crossChainOnly,
		StatusFailed:    crossChainOnly,
	},
}

func ParseStatus(s string) (PaymentStatus, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s PaymentStatus) String() string { return string(s) }

func (s PaymentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusExpired
}

// CanTransition reports whether from -> to is legal for a payment of the given kind.
func CanTransition(from, to PaymentStatus, crossChain bool) bool {
	r, ok := transitions[from][to]
	if !ok {
		return false
	}
	switch r {
	case sameChainOnly:
		return !crossChain
	case crossChainOnly:
		return crossChain
	default:
		return true
	}
}

// ValidateTransition is CanTransition returning a descriptive error.
func ValidateTransition(from, to PaymentStatus, crossChain bool) error {
	if CanTransition(from, to, crossChain) {
		return nil
	}
	kind := "same-chain"
	if crossChain {
		kind = "cross-chain"
	}
	return fmt.Errorf("%w: %s -> %s for %s payment", ErrInvalidTransition, from, to, kind)
}
