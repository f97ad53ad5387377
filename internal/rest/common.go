package rest

// ResponseError is the handler-level error body.
type ResponseError struct {
	Message string `json:"message"`
}
