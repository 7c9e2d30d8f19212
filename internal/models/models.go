// Package models defines the core data structures for the Stampley content service.
//
// It includes the authored content rows, participant snapshots, check-ins, the tagged chat
// contract and the API response envelope, which are shared across modules.
package models

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusNoMatch indicates the selector found no row for the request.
	APIStatusNoMatch APIStatus = "no_match"
	// APIStatusRecorded indicates data was successfully recorded via API.
	APIStatusRecorded APIStatus = "recorded"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

func envelope(status APIStatus, message string, result interface{}) APIResponse {
	return APIResponse{Status: string(status), Message: message, Result: result}
}

// Success wraps result in an ok envelope.
func Success(result interface{}) APIResponse {
	return envelope(APIStatusOK, "", result)
}

// SuccessWithMessage is Success with a human-readable message.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return envelope(APIStatusOK, message, result)
}

// Error carries only a message.
func Error(message string) APIResponse {
	return envelope(APIStatusError, message, nil)
}

// NoMatch wraps a selection that found no content row; it is not an error.
func NoMatch(result interface{}) APIResponse {
	return envelope(APIStatusNoMatch, "No content row matched", result)
}

// Recorded wraps a stored check-in.
func Recorded(result interface{}) APIResponse {
	return envelope(APIStatusRecorded, "", result)
}
