package dto

type MessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the inbound body of the streaming chat endpoint. An empty
// message is reported in the event stream, not by the validator.
type ChatRequest struct {
	Message string       `json:"message"`
	History []MessageDTO `json:"history,omitempty" validate:"omitempty,max=50,dive"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	IndexBuilt bool   `json:"index_built"`
}
