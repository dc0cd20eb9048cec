package header

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/exemplar/pkg/core"
)

// Decoder turns the text found inside a header comment into metadata.
type Decoder interface {
	// Name identifies the decoder in configuration ("json", "yaml").
	Name() string
	// Decode parses exactly one structured object from payload.
	Decode(payload string) (core.Metadata, error)
}

var errNotObject = errors.New("payload must be a single object")

// DefaultDecoders returns the built-in decoders keyed by name.
func DefaultDecoders() map[string]Decoder {
	return map[string]Decoder{
		"json": NewJSONDecoder(),
		"yaml": NewYAMLDecoder(),
	}
}

// --- JSON Decoder ---

// JSONDecoder decodes strict JSON objects.
type JSONDecoder struct{}

// NewJSONDecoder creates a new JSON decoder.
func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{}
}

func (d *JSONDecoder) Name() string { return "json" }

func (d *JSONDecoder) Decode(payload string) (core.Metadata, error) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, "{") {
		return nil, errNotObject
	}

	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()

	var obj map[string]interface{}
	if err := decoder.Decode(&obj); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	var extra interface{}
	if err := decoder.Decode(&extra); err != io.EOF {
		return nil, errors.New("unexpected data after payload")
	}

	return toMetadata(obj), nil
}

// --- YAML Decoder ---

// YAMLDecoder decodes YAML flow mappings, a superset of JSON objects that also
// accepts unquoted keys and scalars.
type YAMLDecoder struct{}

// NewYAMLDecoder creates a new YAML decoder.
func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{}
}

func (d *YAMLDecoder) Name() string { return "yaml" }

func (d *YAMLDecoder) Decode(payload string) (core.Metadata, error) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, "{") {
		return nil, errNotObject
	}

	decoder := yaml.NewDecoder(bytes.NewReader([]byte(payload)))

	var obj map[string]interface{}
	if err := decoder.Decode(&obj); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	var extra interface{}
	if err := decoder.Decode(&extra); err != io.EOF {
		return nil, errors.New("unexpected data after payload")
	}

	return toMetadata(obj), nil
}

// --- Helpers ---

// toMetadata classifies decoded values. Lists made only of strings become
// KindList; everything that is neither a string nor such a list is kept as
// KindOther.
func toMetadata(obj map[string]interface{}) core.Metadata {
	meta := make(core.Metadata, len(obj))
	for k, v := range obj {
		meta[k] = toValue(v)
	}
	return meta
}

func toValue(v interface{}) core.Value {
	switch t := v.(type) {
	case string:
		return core.StringValue(t)
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return core.OtherValue(v)
			}
			items = append(items, s)
		}
		return core.ListValue(items...)
	default:
		return core.OtherValue(v)
	}
}
