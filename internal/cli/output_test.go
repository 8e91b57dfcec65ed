package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error("NOT_FOUND", "no student found", "code 9"))
	assert.Equal(t, "Error [NOT_FOUND]: no student found\nDetails: code 9\n", buf.String())
}

func TestOutputFormatter_PromptAvoidsJSONStream(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag}

	formatter.Prompt("Question %d: ", 1)
	assert.Empty(t, out.String())
	assert.Equal(t, "Question 1: ", diag.String())
}

func TestFailExitCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{name: "missing data file", err: appErrors.Clone(appErrors.ErrDataFileMissing, "data file \"x\" not found"), code: ExitCommandError},
		{name: "not found", err: appErrors.ErrNotFound, code: ExitFailure},
		{name: "persistence", err: appErrors.Clone(appErrors.ErrPersistenceFailed, ""), code: ExitFailure},
		{name: "plain error", err: errors.New("boom"), code: ExitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			formatter := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}}
			assert.Equal(t, tc.code, GetExitCode(formatter.Fail(tc.err)))
		})
	}
}

func TestGetExitCodeForCobraErrors(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("unknown command \"x\"")))
}

func TestRenderTableEmptyOverview(t *testing.T) {
	table := &models.RecordTable{Title: "All Student Records", Summary: "No student data available."}
	want := "All Student Records\n" +
		"CODE    NAME  CW TOTAL  EXAM  PERCENTAGE  GRADE\n" +
		"-----------------------------------------------\n" +
		"-----------------------------------------------\n" +
		"No student data available.\n"
	assert.Equal(t, want, RenderTable(table))
}
