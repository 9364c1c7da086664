package events

// EventType represents the type of an event in the system.
type EventType string

// Event type constants
const (
	EventTypeTransactionRecorded EventType = "Transaction.Recorded"
	EventTypeAccountDeactivated  EventType = "Account.Deactivated"
	EventTypeAccountReactivated  EventType = "Account.Reactivated"
	EventTypeCustomerCreated     EventType = "Customer.Created"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}
