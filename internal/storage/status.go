package storage

type Status string

const (
	StatusCreated        Status = "Created"
	StatusPickedUp       Status = "Picked Up"
	StatusInTransit      Status = "In Transit"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
	StatusFailedDelivery Status = "Failed Delivery"
	StatusReturned       Status = "Returned"
)

// statusOrder is the display ordering. It is not a transition table: any status
// may follow any other.
var statusOrder = []Status{
	StatusCreated,
	StatusPickedUp,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
	StatusFailedDelivery,
	StatusReturned,
}

var statusDescriptions = map[Status]string{
	StatusCreated:        "Parcel has been created and is ready for pickup",
	StatusPickedUp:       "Parcel has been collected from sender",
	StatusInTransit:      "Parcel is being transported to destination",
	StatusOutForDelivery: "Parcel is out for final delivery",
	StatusDelivered:      "Parcel has been successfully delivered",
	StatusFailedDelivery: "Delivery attempt was unsuccessful",
	StatusReturned:       "Parcel has been returned to sender",
}

// Statuses returns the vocabulary in display order.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st.Valid() {
		return st, nil
	}
	return "", &ValidationError{Field: "status", Reason: "unknown status " + quote(s)}
}

func (s Status) Valid() bool {
	_, ok := statusDescriptions[s]
	return ok
}

func (s Status) index() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the status that follows s in display order.
func (s Status) Next() (Status, bool) {
	i := s.index()
	if i == -1 || i == len(statusOrder)-1 {
		return "", false
	}
	return statusOrder[i+1], true
}

// Previous returns the status that precedes s in display order.
func (s Status) Previous() (Status, bool) {
	i := s.index()
	if i <= 0 {
		return "", false
	}
	return statusOrder[i-1], true
}

func (s Status) Description() string {
	return statusDescriptions[s]
}

// IsTerminal reports whether a parcel in this status is no longer expected to move.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusReturned
}
