// Package commands provides CLI command handlers for oasguard.
package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/segmentio/encoding/json"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasguard/oaserrors"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// ErrInvalid is returned by validation commands when the message was
// rejected. main maps it to exit code 1 without printing it again.
var ErrInvalid = errors.New("validation failed")

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data to w in the specified format (json or yaml).
func OutputStructured(w io.Writer, data any, format string) error {
	var out []byte
	var err error

	switch format {
	case FormatJSON:
		out, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		out, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(w, "%s\n", bytes.TrimRight(out, "\n"))
	return nil
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// ParsePairs parses repeated name=value flag values. A pair without '='
// has an empty value.
func ParsePairs(flag string, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, _ := strings.Cut(pair, "=")
		if name == "" {
			return nil, fmt.Errorf("invalid --%s value %q: expected name=value", flag, pair)
		}
		out[name] = value
	}
	return out, nil
}

// ReadBody returns the body given inline or read from a file ("-" for stdin).
// Setting both is an error.
func ReadBody(stdin io.Reader, inline, file string) ([]byte, error) {
	switch {
	case inline != "" && file != "":
		return nil, errors.New("at most one of --body or --body-file may be provided")
	case file == StdinFilePath:
		return io.ReadAll(stdin)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		return data, nil
	default:
		return []byte(inline), nil
	}
}

// Failure describes a rejected request or response in command output.
type Failure struct {
	Kind      string `json:"kind"                yaml:"kind"`
	Location  string `json:"location,omitempty"  yaml:"location,omitempty"`
	Parameter string `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Message   string `json:"message"             yaml:"message"`
}

// DescribeFailure converts a message validation failure for output. ok is
// false for errors that are not about the message itself.
func DescribeFailure(err error) (*Failure, bool) {
	var ve *oaserrors.ValidationError
	if errors.As(err, &ve) {
		return &Failure{
			Kind:      ve.Kind.String(),
			Location:  ve.Location,
			Parameter: ve.Parameter,
			Message:   err.Error(),
		}, true
	}
	if errors.Is(err, oaserrors.ErrUnsupportedMediaType) {
		return &Failure{Kind: oaserrors.ErrUnsupportedMediaType.Error(), Location: "body", Message: err.Error()}, true
	}
	return nil, false
}
