package ingest

import "strings"

// Document type classes.
const (
	DocTypeTranscript        = "transcript"
	DocTypeResume            = "resume"
	DocTypeStudentSyllabus   = "student_syllabus"
	DocTypeReferenceSyllabus = "reference_syllabus"
)

// ClassifyDocument infers the document class from the filename. Student
// uploads that are neither transcripts nor resumes are assumed to be
// syllabi submitted as evidence.
func ClassifyDocument(fileName string) string {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, "transcript"):
		return DocTypeTranscript
	case strings.Contains(lower, "resume"), strings.Contains(lower, "cv"):
		return DocTypeResume
	default:
		return DocTypeStudentSyllabus
	}
}
