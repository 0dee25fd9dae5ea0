package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/schema"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E002" // Path not found
	ErrCodeSchemaFailed = "E003" // CUE schema load failed
	ErrCodeDataFailed   = "E004" // Record file unreadable or malformed
	ErrCodeConfig       = "E005" // Invalid configuration
)

// LoadError is an input file that could not be used.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSchema loads the named CUE definition from path.
func LoadSchema(path, definition string) (*schema.Type, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "--schema is required"}
	}
	if definition == "" {
		return nil, &LoadError{Code: ErrCodeSchemaFailed, Path: path, Message: "--definition is required"}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "schema file not found"}
	}

	typ, err := schema.LoadFile(path, definition)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeSchemaFailed, Path: path, Message: err.Error()}
	}
	return typ, nil
}

// LoadRecords reads a YAML or JSON file holding a sequence of records.
func LoadRecords(path string) ([]any, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "--data is required"}
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "data file not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDataFailed, Path: path, Message: err.Error()}
	}

	var records []map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeDataFailed, Path: path, Message: fmt.Sprintf("expected a list of records: %v", err)}
	}

	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out, nil
}

// errorCode returns the code carried by err, if any.
func errorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
