package generation

import "errors"

// Client-visible messages. These strings are part of the wire contract.
const (
	MsgJobDescriptionRequired = "Job description is required"
	MsgProcessing             = "Error processing your request"
	MsgGenerating             = "Error generating resume"
	MsgParsing                = "Error parsing resume data"
)

var (
	// ErrJobDescriptionRequired is returned by Open when the trimmed job description is empty.
	ErrJobDescriptionRequired = errors.New("job description is required")

	// ErrTrailingData marks model output with more than one JSON value.
	ErrTrailingData = errors.New("unexpected data after JSON value")
)

// Outcome classifies a finished relay.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeParseError    Outcome = "parse_error"
	OutcomeSchemaError   Outcome = "schema_error"
	OutcomeProviderError Outcome = "provider_error"
	OutcomeTimeout       Outcome = "timeout"
)

// Message returns the error text streamed for a failed outcome, or "" on success.
func (o Outcome) Message() string {
	switch o {
	case OutcomeParseError, OutcomeSchemaError:
		return MsgParsing
	case OutcomeProviderError, OutcomeTimeout:
		return MsgGenerating
	default:
		return ""
	}
}
