// Package schema validates decoded header metadata and builds core.Record
// values from it.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/aretw0/exemplar/pkg/core"
)

// DefaultTag is the tag synthesized for records that declare none.
const DefaultTag = "plain"

// Recognized header keys.
const (
	KeyTitle    = "title"
	KeyPlatform = "platform"
	KeyMode     = "mode"
	KeyTags     = "tags"
)

// Policy controls how records without tags are treated.
type Policy struct {
	// DefaultTag is used when tags are absent or empty. Empty means DefaultTag.
	DefaultTag string
	// RequireTags rejects records without tags instead of synthesizing one.
	RequireTags bool
}

// DefaultPolicy synthesizes the "plain" tag.
func DefaultPolicy() Policy {
	return Policy{DefaultTag: DefaultTag}
}

// Validator checks metadata against the record schema.
// It is safe for concurrent use.
type Validator struct {
	policy   Policy
	validate *validator.Validate
}

// candidate mirrors core.Record with the constraints a valid record must meet.
type candidate struct {
	ID       string   `json:"id" validate:"notblank"`
	Title    string   `json:"title" validate:"notblank"`
	Platform string   `json:"platform"`
	Mode     string   `json:"mode"`
	Tags     []string `json:"tags" validate:"min=1,dive,notblank"`
}

// New creates a Validator for policy.
func New(policy Policy) *Validator {
	if policy.DefaultTag == "" {
		policy.DefaultTag = DefaultTag
	}

	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("schema: register notblank: %v", err))
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{policy: policy, validate: v}
}

// Policy returns the effective policy.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Validate builds a record for id from meta. Unknown keys are ignored.
// The returned error, if any, is a *core.SchemaError.
func (v *Validator) Validate(id string, meta core.Metadata) (core.Record, error) {
	title, err := stringField(id, meta, KeyTitle, true)
	if err != nil {
		return core.Record{}, err
	}
	platform, err := stringField(id, meta, KeyPlatform, false)
	if err != nil {
		return core.Record{}, err
	}
	mode, err := stringField(id, meta, KeyMode, false)
	if err != nil {
		return core.Record{}, err
	}
	tags, err := v.tagsField(id, meta)
	if err != nil {
		return core.Record{}, err
	}

	c := candidate{
		ID:       id,
		Title:    strings.TrimSpace(title),
		Platform: strings.TrimSpace(platform),
		Mode:     strings.TrimSpace(mode),
		Tags:     tags,
	}
	if err := v.validate.Struct(c); err != nil {
		return core.Record{}, toSchemaError(id, err)
	}

	return core.Record{
		ID:       c.ID,
		Title:    c.Title,
		Platform: c.Platform,
		Mode:     c.Mode,
		Tags:     c.Tags,
	}, nil
}

// stringField reads a string key. A null value counts as absent.
func stringField(id string, meta core.Metadata, key string, required bool) (string, error) {
	val, ok := meta[key]
	if !ok || (val.Kind == core.KindOther && val.Raw == nil) {
		if required {
			return "", &core.SchemaError{ID: id, Field: key, Reason: "is required"}
		}
		return "", nil
	}
	if val.Kind != core.KindString {
		return "", &core.SchemaError{ID: id, Field: key, Reason: "must be a string"}
	}
	return val.Str, nil
}

func (v *Validator) tagsField(id string, meta core.Metadata) ([]string, error) {
	val, ok := meta[KeyTags]
	var tags []string
	switch {
	case !ok, val.Kind == core.KindOther && val.Raw == nil:
	case val.Kind == core.KindList:
		tags = append([]string(nil), val.List...)
	default:
		return nil, &core.SchemaError{ID: id, Field: KeyTags, Reason: "must be a list of strings"}
	}

	if len(tags) > 0 {
		return tags, nil
	}
	if v.policy.RequireTags {
		return nil, &core.SchemaError{ID: id, Field: KeyTags, Reason: "at least one tag is required"}
	}
	return []string{v.policy.DefaultTag}, nil
}

// toSchemaError reports the first failed constraint.
func toSchemaError(id string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &core.SchemaError{ID: id, Field: "record", Reason: err.Error()}
	}

	fe := verrs[0]
	field := fe.Field()
	reason := fmt.Sprintf("failed %q constraint", fe.Tag())
	switch fe.Tag() {
	case "notblank":
		reason = "must not be empty"
	case "min":
		reason = fmt.Sprintf("must have at least %s item(s)", fe.Param())
	}
	return &core.SchemaError{ID: id, Field: field, Reason: reason}
}

var _ core.RecordValidator = (*Validator)(nil)
