package dto

type AskRequest struct {
	Question  string `json:"question" validate:"required"`
	SessionId string `json:"session_id"`
}

type ErrorRecordDTO struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

type AskResponse struct {
	Answer     string           `json:"answer"`
	SessionId  string           `json:"session_id"`
	Categories []string         `json:"categories,omitempty"`
	Errors     []ErrorRecordDTO `json:"errors,omitempty"`
	ElapsedMs  int64            `json:"elapsed_ms"`
}

// PublishRequestAuditMessage is the payload exchanged on the internal
// audit topic after each answered question.
type PublishRequestAuditMessage struct {
	SessionId  string           `json:"session_id"`
	Question   string           `json:"question"`
	Answer     string           `json:"answer"`
	Categories []string         `json:"categories"`
	Errors     []ErrorRecordDTO `json:"errors"`
	ElapsedMs  int64            `json:"elapsed_ms"`
}

type HealthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
}
