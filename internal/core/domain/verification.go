package domain

// VerificationStatus is the email verification state of a principal.
type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusVerified   VerificationStatus = "verified"
)

// validTransitions defines the allowed state machine transitions.
// Verified is terminal.
var validTransitions = map[VerificationStatus][]VerificationStatus{
	StatusUnverified: {StatusVerified},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// VerificationStatus derives the state from the stored flag.
func (u *User) VerificationStatus() VerificationStatus {
	if u.IsVerified {
		return StatusVerified
	}
	return StatusUnverified
}
