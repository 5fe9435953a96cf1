package orders

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRejected   Status = "rejected"
)

// ValidStatus reports whether s is one of the seven recognized labels.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Transitions are strict forward-only. Cancellation is reachable only through
// the cancel operation, which has its own pending-only guard, so it does not
// appear here. Rejection is a staff side-exit from any non-terminal state.
var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusApproved: true, StatusRejected: true},
	StatusApproved:   {StatusProcessing: true, StatusRejected: true},
	StatusProcessing: {StatusShipped: true, StatusRejected: true},
	StatusShipped:    {StatusDelivered: true, StatusRejected: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
	StatusRejected:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal reports whether no further transition may leave s.
func Terminal(s Status) bool {
	return len(validNext[s]) == 0
}

// InProgressStatuses are the states the manager dashboard treats as active
// fulfillment.
var InProgressStatuses = []Status{StatusApproved, StatusProcessing, StatusShipped}
