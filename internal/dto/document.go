package dto

type UploadResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	ContextLength int    `json:"context_length"`
}
