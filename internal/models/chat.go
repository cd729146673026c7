package models

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Prompt  string `json:"prompt"`
	ModelID string `json:"model_id,omitempty"`
}

// ServiceInfo is returned by the info endpoint.
type ServiceInfo struct {
	AppVersion string `json:"app_version"`
	ModelID    string `json:"model_id"`
}
