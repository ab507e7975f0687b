package models

// ErrorResponse is the standard error envelope for API responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PositionResponse is a FinancialPosition with its adjusted value decoded to a
// plain decimal string for API consumers.
type PositionResponse struct {
	FinancialPosition
	DecodedValue string `json:"decoded_value"`
}

// IngestAccepted acknowledges an upload whose pipeline run was started in the
// background.
type IngestAccepted struct {
	RunID      string `json:"run_id"`
	SourceFile string `json:"source_file"`
	Status     string `json:"status"`
}
