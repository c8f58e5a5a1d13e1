package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pfsc/internal/compiler"
	"github.com/roach88/pfsc/internal/render"
	"github.com/roach88/pfsc/internal/resolver"
)

func TestOutputFormatter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success([]string{"NRB", "SR"}))
	require.NoError(t, formatter.Error(ErrCodeMissingFile, "requirement \"sr\" not found", map[string]string{"path": "requirements/sr.yaml"}))

	dec := json.NewDecoder(buf)
	var ok, failed CLIResponse
	require.NoError(t, dec.Decode(&ok))
	require.NoError(t, dec.Decode(&failed))

	assert.Equal(t, "ok", ok.Status)
	assert.Equal(t, []any{"NRB", "SR"}, ok.Data)
	assert.Nil(t, ok.Error)

	assert.Equal(t, "error", failed.Status)
	require.NotNil(t, failed.Error)
	assert.Equal(t, ErrCodeMissingFile, failed.Error.Code)
	assert.Equal(t, map[string]any{"path": "requirements/sr.yaml"}, failed.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		t.Run(fmt.Sprintf("verbose=%v", verbose), func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: verbose}

			require.NoError(t, formatter.Error(ErrCodeSchema, "title is required", "pfs/SR/document.yaml"))
			assert.Contains(t, buf.String(), "Error [E005]: title is required\n")
			if verbose {
				assert.Contains(t, buf.String(), "Details: pfs/SR/document.yaml")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	formatter.VerboseLog("Loading %s", "pfs/SR")
	assert.Empty(t, out.String())
	assert.Equal(t, "Loading pfs/SR\n", diag.String())

	formatter.Verbose = false
	formatter.VerboseLog("dropped")
	assert.Equal(t, "Loading pfs/SR\n", diag.String())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"missing directory", &resolver.ReferenceError{Kind: resolver.MissingDirectory, ID: "XX"}, ErrCodeNotFound, ExitCommandError},
		{"missing file", &resolver.ReferenceError{Kind: resolver.MissingFile, ID: "sr"}, ErrCodeMissingFile, ExitFailure},
		{"schema violation", &resolver.ReferenceError{Kind: resolver.SchemaViolation}, ErrCodeSchema, ExitFailure},
		{"cyclic include", &resolver.ReferenceError{Kind: resolver.CyclicReference}, ErrCodeCycle, ExitFailure},
		{"wrapped reference error", fmt.Errorf("loading: %w", &resolver.ReferenceError{Kind: resolver.MissingFile}), ErrCodeMissingFile, ExitFailure},
		{"unmet dependency", &compiler.UnmetDependencyError{RequirementUID: "general.sr", DependencyID: "nope"}, ErrCodeUnmetDependency, ExitFailure},
		{"structural validation", compiler.ValidationErrors{{Field: "id", Code: compiler.ErrSpecIDEmpty}}, ErrCodeValidation, ExitFailure},
		{"template", &render.TemplateError{Name: "t", Err: errors.New("bad")}, ErrCodeTemplate, ExitFailure},
		{"command error", commandError(ErrCodeWriteFailed, "write out.json", errors.New("denied")), ErrCodeWriteFailed, ExitCommandError},
		{"plain exit error", NewExitError(ExitFailure, "failed"), ErrCodeGeneric, ExitFailure},
		{"unknown", errors.New("boom"), ErrCodeGeneric, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := Classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExit, exit)
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	invalid := compiler.ValidationErrors{{Spec: "SR", Field: "title", Message: "title is required", Code: compiler.ErrSpecTitleEmpty}}
	err := formatter.Fail(invalid)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorAs(t, err, new(compiler.ValidationErrors))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "title is required")
	assert.NotNil(t, resp.Error.Details)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "x"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}
