package requests

import "time"

// RecordDTO is the camelCase wire shape the advisor frontend consumes.
type RecordDTO struct {
	ID            string `json:"id"`
	DocumentID    string `json:"documentId"`
	DocumentName  string `json:"documentName"`
	StudentName   string `json:"studentName"`
	NUID          string `json:"nuid"`
	RequestType   string `json:"requestType"`
	TargetCourse  string `json:"targetCourse"`
	Status        string `json:"status"`
	Credits       *int   `json:"credits"`
	Notes         string `json:"notes"`
	SubmittedDate string `json:"submittedDate"`
	UpdatedDate   string `json:"updatedDate"`
	UpdatedBy     string `json:"updatedBy"`
}

func toDTO(r Record) RecordDTO {
	return RecordDTO{
		ID:            r.RequestID,
		DocumentID:    r.DocumentID,
		DocumentName:  r.DocumentName,
		StudentName:   r.StudentName,
		NUID:          r.NUID,
		RequestType:   r.RequestType,
		TargetCourse:  r.TargetCourse,
		Status:        r.Status,
		Credits:       r.CreditsAwarded,
		Notes:         r.AdvisorNotes,
		SubmittedDate: formatTime(r.SubmittedDate),
		UpdatedDate:   formatTime(r.UpdatedDate),
		UpdatedBy:     r.UpdatedBy,
	}
}

func toDTOs(records []Record) []RecordDTO {
	out := make([]RecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toDTO(r))
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
