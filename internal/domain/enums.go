package domain

// Role identifies who produced a chat turn.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleUser || r == RoleBot }

// EventKind classifies an announcement.
type EventKind string

const (
	KindAnnouncement   EventKind = "announcement"
	KindScheduleChange EventKind = "schedule_change"
	KindDeadline       EventKind = "deadline"
	KindInfo           EventKind = "info"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case KindAnnouncement, KindScheduleChange, KindDeadline, KindInfo:
		return true
	}
	return false
}

// EventPriority orders active announcements.
type EventPriority string

const (
	PriorityLow    EventPriority = "low"
	PriorityMedium EventPriority = "medium"
	PriorityHigh   EventPriority = "high"
	PriorityUrgent EventPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p EventPriority) Valid() bool { return p.Rank() < 5 }

// Rank maps a priority to its sort position: urgent=1, high=2, medium=3,
// low=4. Unknown values sort last.
func (p EventPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	}
	return 5
}

// DefaultSystemPromptName is the system prompt the chat endpoint reads.
const DefaultSystemPromptName = "default"
