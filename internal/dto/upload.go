package dto

// UploadResponse is returned once a document has been stored and analysed.
type UploadResponse struct {
	JobID        string `json:"job_id"`
	Message      string `json:"message"`
	Status       string `json:"status"`
	AssignmentID string `json:"assignment_id"`
	AnalysisID   string `json:"analysis_id"`
	Degraded     bool   `json:"degraded"`
}
