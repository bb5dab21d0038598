package model

// Shared status vocabulary for batches and payloads.
// Transitions are monotonic, except FAILED which is re-claimed by the next
// scheduler tick together with PENDING batches.
type Status string

const (
	StatusPending             Status = "PENDING"
	StatusWaitingForAllowlist Status = "WAITING_FOR_ALLOWLIST"
	StatusPublished           Status = "PUBLISHED"
	StatusSent                Status = "SENT"
	StatusFailed              Status = "FAILED"
)

func (self Status) String() string {
	return string(self)
}

func (self Status) rank() int {
	switch self {
	case StatusPending:
		return 0
	case StatusWaitingForAllowlist:
		return 1
	case StatusPublished:
		return 2
	case StatusSent:
		return 3
	}
	return -1
}

// CanAdvanceTo tells whether next is a legal successor of the current status
func (self Status) CanAdvanceTo(next Status) bool {
	if self == StatusFailed {
		// Retry path, the scheduler re-claims failed batches
		return next == StatusWaitingForAllowlist
	}
	if next == StatusFailed {
		return self == StatusWaitingForAllowlist
	}
	return next.rank() > self.rank()
}
