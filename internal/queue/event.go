// Package queue defines message payloads exchanged over the message broker.
package queue

// StaffActivatedEvent is published when a candidate is approved and a
// staff member record is created.  It carries enough detail for
// downstream consumers to log or trigger provisioning without querying
// the primary database.
type StaffActivatedEvent struct {
	StaffID     uint64 `json:"staff_id"`
	CandidateID uint64 `json:"candidate_id"`
	PostingID   uint64 `json:"posting_id"`
	FullName    string `json:"full_name"`
	RoleType    string `json:"role_type"`
	Employment  string `json:"employment"`
	ActivatedAt string `json:"activated_at"`
}

// CandidateRejectedEvent is published when a candidate is rejected at
// any pre-approval stage.
type CandidateRejectedEvent struct {
	CandidateID uint64 `json:"candidate_id"`
	PostingID   uint64 `json:"posting_id"`
	FullName    string `json:"full_name"`
	Stage       string `json:"stage"`
	Reason      string `json:"reason"`
	RejectedAt  string `json:"rejected_at"`
}
