package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/pfsc/internal/compiler"
	"github.com/roach88/pfsc/internal/render"
	"github.com/roach88/pfsc/internal/resolver"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Invalid input tree (missing file, schema violation, unmet dependency, ...)
	ExitCommandError = 2 // Command error (bad flags, unknown PFS, unwritable output, ...)
)

// Error codes reported in text and JSON output.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeNoSpecs         = "E002" // No specification found under the input root
	ErrCodeNotFound        = "E003" // Requested PFS folder does not exist
	ErrCodeMissingFile     = "E004" // Identifier does not resolve to a file
	ErrCodeSchema          = "E005" // File does not match its expected shape
	ErrCodeCycle           = "E006" // Cyclic include
	ErrCodeUnmetDependency = "E007" // Dependency on an unknown requirement
	ErrCodeValidation      = "E008" // Structural validation failed
	ErrCodeTemplate        = "E009" // Markdown template missing or failing
	ErrCodeWriteFailed     = "E010" // Output file write error
	ErrCodeHistory         = "E011" // Build history database error
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (ExitFailure or ExitCommandError)
	ErrCode string // Reported error code (optional, see Classify)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// commandError reports a failure of the command itself rather than of the
// input tree.
func commandError(code, message string, err error) *ExitError {
	return &ExitError{Code: ExitCommandError, ErrCode: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Classify maps a pipeline error to its error code and exit code.
func Classify(err error) (code string, exit int) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ErrCode != "" {
			return exitErr.ErrCode, exitErr.Code
		}
		if exitErr.Err == nil {
			return ErrCodeGeneric, exitErr.Code
		}
	}

	var refErr *resolver.ReferenceError
	var unmet *compiler.UnmetDependencyError
	var invalid compiler.ValidationErrors
	var tmplErr *render.TemplateError
	switch {
	case errors.As(err, &refErr):
		switch refErr.Kind {
		case resolver.MissingDirectory:
			return ErrCodeNotFound, ExitCommandError
		case resolver.MissingFile:
			return ErrCodeMissingFile, ExitFailure
		case resolver.SchemaViolation:
			return ErrCodeSchema, ExitFailure
		case resolver.CyclicReference:
			return ErrCodeCycle, ExitFailure
		}
	case errors.As(err, &unmet):
		return ErrCodeUnmetDependency, ExitFailure
	case errors.As(err, &invalid):
		return ErrCodeValidation, ExitFailure
	case errors.As(err, &tmplErr):
		return ErrCodeTemplate, ExitFailure
	}
	return ErrCodeGeneric, ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := Classify(err)
	var details any
	var invalid compiler.ValidationErrors
	if errors.As(err, &invalid) {
		details = []compiler.ValidationError(invalid)
	}
	_ = f.Error(code, err.Error(), details)
	return &ExitError{Code: exit, ErrCode: code, Message: code, Err: err}
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
