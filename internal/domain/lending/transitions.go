package lending

// loanTransitions is the allow-list of successor states.
// REJECTED and RETURNED are terminal.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusPending:  {LoanStatusApproved, LoanStatusRejected},
	LoanStatusApproved: {LoanStatusReturned},
	LoanStatusRejected: nil,
	LoanStatusReturned: nil,
}

// AllowedTransitions returns the statuses reachable from s in one step
func AllowedTransitions(s LoanStatus) []LoanStatus {
	next := loanTransitions[s]
	out := make([]LoanStatus, len(next))
	copy(out, next)
	return out
}
