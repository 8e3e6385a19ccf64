package dto

// HealthResponse reports service and dependency status.
type HealthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	Database         string `json:"database"`
	OpenAIConfigured bool   `json:"openai_configured"`
	Version          string `json:"version"`
}
