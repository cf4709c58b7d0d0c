package llm

import (
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

// ErrEmptyResult is returned when the upstream answered without usable text
var ErrEmptyResult = errors.New("upstream returned no output text")

// TransportError is a non-success HTTP status or a network failure
type TransportError struct {
	Provider   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is a response body that does not match the expected shape
type MalformedResponseError struct {
	Provider string
	Raw      string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned a malformed response: %v", e.Provider, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// newTransportError extracts the HTTP status from SDK errors when available
func newTransportError(provider string, err error) *TransportError {
	return &TransportError{
		Provider:   provider,
		StatusCode: statusCodeOf(err),
		Err:        err,
	}
}

func statusCodeOf(err error) int {
	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return geminiErr.Code
	}
	var geminiErrPtr *genai.APIError
	if errors.As(err, &geminiErrPtr) && geminiErrPtr != nil {
		return geminiErrPtr.Code
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) && openaiErr != nil {
		return openaiErr.StatusCode
	}
	return 0
}
