package reservation

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsActive reports whether a reservation in this status holds its slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// PaymentStatus is the last gateway status observed for the reservation's intent.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

func (p PaymentStatus) String() string {
	return string(p)
}

type CancelReason string

const (
	ReasonNone               CancelReason = ""
	ReasonUserCancelled      CancelReason = "user_cancelled"
	ReasonAdminCancelled     CancelReason = "admin_cancelled"
	ReasonExpired            CancelReason = "expired"
	ReasonPaymentUnavailable CancelReason = "payment_unavailable"
)

func (c CancelReason) String() string {
	return string(c)
}

type Action string

const (
	ActionView     Action = "view"
	ActionConfirm  Action = "confirm"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionExpire   Action = "expire"
)
