package audit

import "time"

// Event is emitted from domain logic to capture key provisioning actions.
// Keep it transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	OrgID        string    `json:"org_id"`
	MemberNumber string    `json:"member_number,omitempty"`
	IdentityID   string    `json:"identity_id,omitempty"`
	Variant      string    `json:"variant,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventMemberCreated       AuditEvent = "member_created"
	EventMemberRejoined      AuditEvent = "member_rejoined"
	EventDuplicateRejected   AuditEvent = "duplicate_rejected"
	EventProvisioningFailed  AuditEvent = "provisioning_failed"
	EventWelcomeNoticeQueued AuditEvent = "welcome_notice_queued"
)
