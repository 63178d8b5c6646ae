package http

// Error codes surfaced to clients.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeInvalidArgument = "invalid-argument"
	CodeNotFound        = "not-found"
	CodeInternal        = "internal"
	CodeUnavailable     = "unavailable"
	CodeRateLimited     = "rate-limited"
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func errResp(code, message string) ErrorResponse {
	return ErrorResponse{Error: message, Code: code}
}
