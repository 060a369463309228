package checkout

type FlowStatus string

const (
	StatusEnteringShipping FlowStatus = "ENTERING_SHIPPING"
	StatusEnteringPayment  FlowStatus = "ENTERING_PAYMENT"
	StatusSubmitting       FlowStatus = "SUBMITTING"
	StatusPlaced           FlowStatus = "PLACED"
)

func (s FlowStatus) IsTerminal() bool {
	return s == StatusPlaced
}

func (s FlowStatus) CanTransitionTo(next FlowStatus) bool {
	switch s {
	case StatusEnteringShipping:
		return next == StatusEnteringPayment
	case StatusEnteringPayment:
		// re-entering payment means the shipping form was edited
		return next == StatusEnteringPayment || next == StatusSubmitting
	case StatusSubmitting:
		// back to payment only when the submission fails
		return next == StatusPlaced || next == StatusEnteringPayment
	}
	return false
}

// String representation (for logging)
func (s FlowStatus) String() string {
	return string(s)
}
