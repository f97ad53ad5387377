package response

// Envelope is the JSON error shape returned by middleware; handlers use fres
// for success payloads.
type Envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Error(code, message string, data any) Envelope {
	return Envelope{
		Code:    code,
		Message: message,
		Data:    data,
	}
}
