package testreport

import (
	"errors"
	"fmt"
)

// InvalidFileMessage is shown to users for any document that cannot be ingested
const InvalidFileMessage = "Invalid file: please upload a valid JUnit XML file"

// MalformedInputError is returned when the input is not well-formed markup
type MalformedInputError struct {
	Reason string
	Cause  error
}

func (e *MalformedInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed input: %s: %v", e.Reason, e.Cause)
	}
	return "malformed input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error {
	return e.Cause
}

// UnsupportedFormatError is returned when well-formed markup has no
// testsuite or testsuites root element
type UnsupportedFormatError struct {
	Root string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: root element <%s> is neither <testsuites> nor <testsuite>", e.Root)
}

// IsInvalidInput reports whether err came from a document that could not be ingested
func IsInvalidInput(err error) bool {
	var malformed *MalformedInputError
	var unsupported *UnsupportedFormatError
	return errors.As(err, &malformed) || errors.As(err, &unsupported)
}

// UserMessage maps a parse error to the message shown to the user. Both
// invalid input kinds share one message.
func UserMessage(err error) string {
	if IsInvalidInput(err) {
		return InvalidFileMessage
	}
	return fmt.Sprintf("Unable to load report: %v", err)
}
