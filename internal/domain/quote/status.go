package quote

type Status string

const (
	StatusPending  Status = "pending"
	StatusInReview Status = "in_review"
	StatusQuoted   Status = "quoted"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusInReview, StatusRejected, StatusExpired},
	StatusInReview: {StatusQuoted, StatusRejected, StatusExpired},
	StatusQuoted:   {StatusAccepted, StatusRejected, StatusExpired},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusQuoted, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusExpired
}

// Editable reports whether owner field edits are still accepted.
func (s Status) Editable() bool {
	return s == StatusPending || s == StatusInReview
}

// CarriesAmount reports whether estimated_amount may be non-null in this status.
func (s Status) CarriesAmount() bool {
	return s == StatusQuoted || s == StatusAccepted
}

// CanTransition reports whether from -> to is an edge of the status graph.
// Re-expiring an expired quote is not an edge; callers treat it as a no-op.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a *TransitionError when from -> to is not allowed.
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
