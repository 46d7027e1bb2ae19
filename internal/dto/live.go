package dto

type ConnectResponse struct {
	Success bool   `json:"success"`
	State   string `json:"state" example:"connected"`
	Message string `json:"message,omitempty"`
}

type DisconnectResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type StatusResponse struct {
	State      string `json:"state" example:"disconnected"`
	RetryCount int    `json:"retry_count"`
}
