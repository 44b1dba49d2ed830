package dto

// ActionResult is the envelope every endpoint answers with. Callers branch on
// IsSuccess; failures never surface as transport errors alone.
type ActionResult struct {
	IsSuccess bool        `json:"is_success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

func Success(message string, data interface{}) ActionResult {
	return ActionResult{IsSuccess: true, Message: message, Data: data}
}

func Failure(message string) ActionResult {
	return ActionResult{IsSuccess: false, Message: message}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Cache     string `json:"cache"`
}

// Page carries pagination metadata alongside a result slice.
type Page struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
