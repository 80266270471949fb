package models

import "time"

// AdminAction is an audit trail entry describing an administrative mutation.
// Writes are best-effort: a failed append never blocks the action it records.
type AdminAction struct {
	ID        string                 `json:"id" firestore:"-"`
	Action    string                 `json:"action" firestore:"action"` // e.g. "extend_trial", "delete_account_complete"
	AccountID string                 `json:"accountId" firestore:"accountId"`
	AdminID   string                 `json:"adminId" firestore:"adminId"`
	Details   map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
	CreatedAt time.Time              `json:"createdAt" firestore:"createdAt"`
}

// SystemAlert is an operational notice surfaced on the dashboard until resolved.
type SystemAlert struct {
	ID        string    `json:"id" firestore:"-"`
	Severity  string    `json:"severity,omitempty" firestore:"severity,omitempty"` // "info", "warning", "critical"
	Message   string    `json:"message" firestore:"message"`
	Resolved  bool      `json:"resolved" firestore:"resolved"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
