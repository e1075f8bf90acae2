package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/compiler"
	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

func TestCheckCommand(t *testing.T) {
	schemaFile := writeSchema(t)

	out, err := execute(t, "", "check", schemaFile, `{"a": 1}`, `{"a": 2, "b": "y"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema: {a: long, b?: string}")
	assert.Contains(t, out, `ok   {"a":1}`)
	assert.Contains(t, out, `ok   {"a":2,"b":"y"}`)
}

func TestCheckCommandMismatch(t *testing.T) {
	schemaFile := writeSchema(t)

	out, err := execute(t, "", "check", schemaFile, `{"a": 1}`, `{"a": "1"}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 value(s) do not match")
	assert.Contains(t, out, `FAIL {"a":"1"}`)
}

func TestCheckCommandInput(t *testing.T) {
	schemaFile := writeSchema(t)

	out, err := execute(t, "{\"a\": 1}\n\n{\"a\": 2}\n", "check", schemaFile, "--input", "-", "--format", "json")
	require.NoError(t, err)

	var response struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Len(t, response.Data.Values, 2)
	assert.Zero(t, response.Data.Failed)
	assert.Len(t, response.Data.Fingerprint, 64)
}

func TestCheckCommandErrors(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeSchema(t)
	broken := writeFile(t, dir, "broken.cue", "{a: ")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing schema", []string{"check", filepath.Join(dir, "none.cue")}, ErrCodeNotFound},
		{"broken schema", []string{"check", broken}, ErrCodeSchema},
		{"invalid value", []string{"check", schemaFile, "{"}, ErrCodeValue},
		{"missing input", []string{"check", schemaFile, "--input", filepath.Join(dir, "none.jsonl")}, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFingerprintCommand(t *testing.T) {
	schemaFile := writeSchema(t)
	s, err := compiler.LoadFile(schemaFile)
	require.NoError(t, err)
	fp, err := schema.Fingerprint(s)
	require.NoError(t, err)

	out, err := execute(t, "", "fingerprint", schemaFile)
	require.NoError(t, err)
	assert.Equal(t, fp+"\n", out)

	out, err = execute(t, "", "fingerprint", schemaFile, "--doc", "--format", "json")
	require.NoError(t, err)

	var response struct {
		Data FingerprintResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, fp, response.Data.Fingerprint)

	parsed, err := schema.ParseDoc(response.Data.Doc)
	require.NoError(t, err)
	assert.True(t, schema.Equal(s, parsed))
}

func TestEncodeCommand(t *testing.T) {
	schemaFile := writeSchema(t)

	out, err := execute(t, "", "encode", schemaFile, `{"a": 1}`, `{"a": 1, "b": "x"}`, `{"a": -1}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002", "01020178", "0001"}, lines(out))
}

func TestEncodeCommandJSON(t *testing.T) {
	schemaFile := writeSchema(t)

	out, err := execute(t, "", "encode", schemaFile, `{"a": 1}`, "--format", "json")
	require.NoError(t, err)

	var response struct {
		Data []EncodedValue `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, []EncodedValue{{Value: `{"a":1}`, Hex: "0002"}}, response.Data)
}

func TestEncodeCommandMismatch(t *testing.T) {
	schemaFile := writeSchema(t)

	out, err := execute(t, "", "encode", schemaFile, `{"a": 1, "c": 2}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeMismatch+"]")
}

func TestEncodeValueErrorCodes(t *testing.T) {
	c, err := codec.New(schema.LongSchema)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}
	_, err = encodeValue(f, c, value.String("x"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	require.NotNil(t, response.Error)
	assert.Equal(t, ErrCodeMismatch, response.Error.Code)

	code, exit := encodeFailure(errors.New("disk on fire"))
	assert.Equal(t, ErrCodeGeneric, code)
	assert.Equal(t, ExitCommandError, exit)
}

func TestDecodeCommand(t *testing.T) {
	schemaFile := writeSchema(t)

	out, err := execute(t, "", "decode", schemaFile, "0002", "01020178", "0001")
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, `{"a":1,"b":"x"}`, `{"a":-1}`}, lines(out))
}

func TestDecodeCommandErrors(t *testing.T) {
	schemaFile := writeSchema(t)

	tests := []struct {
		name     string
		hex      string
		wantCode int
		wantErr  string
	}{
		{"invalid hex", "zz", ExitCommandError, ErrCodeValue},
		{"truncated", "01", ExitFailure, "01"},
		{"trailing bytes", "000200", ExitFailure, "trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", "decode", schemaFile, tt.hex)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompareCommand(t *testing.T) {
	schemaFile := writeSchema(t)

	tests := []struct {
		a, b string
		want string
	}{
		{`{"a": 1}`, `{"a": -1}`, "1"},
		{`{"a": 1}`, `{"a": 1, "b": "x"}`, "-1"},
		{`{"a": 1, "b": "x"}`, `{"b": "x", "a": 1}`, "0"},
	}

	for _, tt := range tests {
		out, err := execute(t, "", "compare", schemaFile, tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, lines(out)[0], "compare(%s, %s)", tt.a, tt.b)
	}
}

func TestCompareCommandJSON(t *testing.T) {
	schemaFile := writeSchema(t)

	out, err := execute(t, "", "compare", schemaFile, `{"a": -1}`, `{"a": 1}`, "--format", "json")
	require.NoError(t, err)

	var response struct {
		Data CompareResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, -1, response.Data.Result)
	assert.Equal(t, "0001", response.Data.A.Hex)
	assert.Equal(t, "0002", response.Data.B.Hex)
}

func TestCompareCommandArgs(t *testing.T) {
	_, err := execute(t, "", "compare", "schema.json", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 3 arg")
}
