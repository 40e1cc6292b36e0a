package notify

// Event is a notification payload pushed to connected websocket clients.
// Delivery is best effort. Events are never queued for offline recipients.
type Event struct {
	Type          string  `json:"type"`
	Message       string  `json:"message"`
	ApplicationID int64   `json:"applicationId,omitempty"`
	Status        string  `json:"status,omitempty"`
	Fee           *string `json:"fee,omitempty"`
	Remarks       *string `json:"remarks,omitempty"`
}

const (
	EventApplicationSubmitted = "application_submitted"
	EventApplicationUpdated   = "application_updated"
	EventStatusChanged        = "status_changed"
	EventPaymentReceived      = "payment_received"
	EventPermitIssued         = "permit_issued"
	EventPermitExpiring       = "permit_expiring"
)

// Dispatcher fans events out to connected clients. Implementations must not
// block the caller; slow or absent recipients are silently skipped.
type Dispatcher interface {
	// NotifyOwner delivers an event to every open connection of one owner.
	NotifyOwner(ownerID int64, event Event)
	// NotifyStaff broadcasts an event to every connected staff and admin client.
	NotifyStaff(event Event)
}
