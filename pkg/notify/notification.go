package notify

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies what a notification is about. The set is closed: kind and
// priority together determine the retry budget and must not change after
// creation.
type Kind string

const (
	KindNewMatch             Kind = "new_match"
	KindSessionReminder      Kind = "session_reminder"
	KindSessionInvite        Kind = "session_invite"
	KindWorkshopAnnouncement Kind = "workshop_announcement"
	KindConnectionRequest    Kind = "connection_request"
	KindPatternLearned       Kind = "pattern_learned"
	KindUrgentAnnouncement   Kind = "urgent_announcement"
	KindTest                 Kind = "test"
)

// Valid reports whether k is a member of the closed kind set.
func (k Kind) Valid() bool {
	switch k {
	case KindNewMatch, KindSessionReminder, KindSessionInvite,
		KindWorkshopAnnouncement, KindConnectionRequest, KindPatternLearned,
		KindUrgentAnnouncement, KindTest:
		return true
	}
	return false
}

// MaxRetries returns the retry budget for the kind. The budget is fixed at
// enqueue time and never re-read afterwards.
func (k Kind) MaxRetries() int {
	switch k {
	case KindSessionReminder:
		return 5
	case KindConnectionRequest, KindNewMatch:
		return 3
	case KindPatternLearned:
		return 2
	default:
		return 1
	}
}

// FastPath reports whether the kind is served by the fast retry loop.
// Session invites and urgent announcements lose their value within seconds,
// so they get the short initial delay and the 5s processor loop.
func (k Kind) FastPath() bool {
	return k == KindSessionInvite || k == KindUrgentAnnouncement
}

// InitialRetryDelay returns the delay before the first retry attempt.
func (k Kind) InitialRetryDelay() time.Duration {
	if k.FastPath() {
		return 5 * time.Second
	}
	return time.Minute
}

// Priority represents the notification priority level.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Valid reports whether p is within the known range.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// String returns the lowercase name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Request is the unit of work: one logical notification for one user.
type Request struct {
	ID           string         `json:"id"`
	TargetUserID string         `json:"target_user_id"`
	Kind         Kind           `json:"kind"`
	Priority     Priority       `json:"priority"`
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	Payload      map[string]any `json:"payload,omitempty"` // forwarded to the client for deep-linking
	CreatedAt    time.Time      `json:"created_at"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"` // scheduled requests past this point are expired, not attempted
}

// Validate checks the request shape. Ordinary delivery problems are never
// surfaced this way; only malformed requests are.
func (r Request) Validate() error {
	if r.TargetUserID == "" {
		return ErrMissingTargetUser
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if !r.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// IsExpired reports whether the request's scheduled delivery window has passed.
func (r Request) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// normalized returns a copy with the ID and creation time filled in.
func (r Request) normalized() Request {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return r
}
