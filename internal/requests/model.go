// Package requests manages CPL Request Records in the metadata table.
package requests

import "time"

// Record is one row of the cpl_requests table.
type Record struct {
	RequestID      string
	DocumentID     string
	DocumentName   string
	StudentName    string
	NUID           string
	RequestType    string
	TargetCourse   string
	Status         string
	CreditsAwarded *int
	AdvisorNotes   string
	SubmittedDate  time.Time
	UpdatedDate    time.Time
	UpdatedBy      string
	DocumentCount  int
}

// NewRecord carries the fields the ingestion pipeline provides on upload.
// Status, timestamps, and actor are defaulted by the repository.
type NewRecord struct {
	DocumentID   string
	DocumentName string
	StudentName  string
	NUID         string
	RequestType  string
	TargetCourse string
}

// StatusUpdate mutates a record's lifecycle fields.
type StatusUpdate struct {
	RequestID string
	Status    string
	Credits   *int
	Notes     string
	UpdatedBy string
}

// StudentSummary is the minimal projection returned by the student lookup.
type StudentSummary struct {
	StudentName  string `json:"student_name"`
	RequestType  string `json:"request_type"`
	TargetCourse string `json:"target_course"`
	DocumentID   string `json:"document_id"`
}
