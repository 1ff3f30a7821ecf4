package a2a

// Status reports the liveness of an agent or server.
type Status string

const (
	StatusActive   Status = "active"
	StatusBusy     Status = "busy"
	StatusInactive Status = "inactive"
	StatusError    Status = "error"
)

// Valid reports whether the status is one of the defined values.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusBusy, StatusInactive, StatusError:
		return true
	}

	return false
}
