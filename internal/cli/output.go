package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Domain failure (not found, conflict, invalid value, save failed)
	ExitCommandError = 2 // Command error (bad flags, missing data file, unusable config)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// GetExitCode extracts the exit code from an error. Errors raised by cobra
// itself (unknown command, bad flag) are command errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // prompts and diagnostics; keeps JSON output parseable
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Result prints text in text mode and data in JSON mode.
func (f *OutputFormatter) Result(text string, data interface{}) error {
	if f.Format == "json" {
		return f.Success(data)
	}
	fmt.Fprintln(f.Writer, text)
	return nil
}

// Table renders a record table as fixed-width text, or as JSON.
func (f *OutputFormatter) Table(table *models.RecordTable) error {
	if f.Format == "json" {
		return f.Success(table)
	}
	_, err := io.WriteString(f.Writer, RenderTable(table))
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and converts it into an ExitError. A missing data file is a
// command error; every other failure is a domain failure.
func (f *OutputFormatter) Fail(err error) error {
	appErr := appErrors.FromError(err)
	var details interface{}
	if appErr.Err != nil {
		details = appErr.Err.Error()
	}
	_ = f.Error(appErr.Code, appErr.Message, details)

	code := ExitFailure
	if errors.Is(err, appErrors.ErrDataFileMissing) {
		code = ExitCommandError
	}
	return WrapExitError(code, appErr.Message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// Prompt writes interactive text. In JSON mode it goes to ErrWriter.
func (f *OutputFormatter) Prompt(format string, args ...interface{}) {
	w := f.Writer
	if f.Format == "json" {
		w = f.GetErrWriter()
	}
	fmt.Fprintf(w, format, args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// RenderTable lays out a record table: title, header, one row per record and
// the optional summary line under a closing rule.
func RenderTable(table *models.RecordTable) string {
	nameWidth := len("NAME")
	for _, r := range table.Records {
		if len(r.Name) > nameWidth {
			nameWidth = len(r.Name)
		}
	}
	rule := strings.Repeat("-", 43+nameWidth)

	var b strings.Builder
	fmt.Fprintln(&b, table.Title)
	fmt.Fprintf(&b, "%-6s  %-*s  %8s  %4s  %10s  %s\n", "CODE", nameWidth, "NAME", "CW TOTAL", "EXAM", "PERCENTAGE", "GRADE")
	fmt.Fprintln(&b, rule)
	for _, r := range table.Records {
		fmt.Fprintf(&b, "%-6d  %-*s  %8d  %4d  %10s  %s\n",
			r.Code, nameWidth, r.Name, r.TotalCoursework, r.Exam, fmt.Sprintf("%.2f%%", r.Percentage), r.Grade)
	}
	if table.Summary != "" {
		fmt.Fprintln(&b, rule)
		fmt.Fprintln(&b, table.Summary)
	}
	return b.String()
}
