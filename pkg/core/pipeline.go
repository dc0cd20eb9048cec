package core

import "errors"

// HeaderParser extracts the metadata header from raw file content.
type HeaderParser interface {
	Parse(content string) (Header, error)
}

// RecordValidator turns decoded metadata into a validated Record.
type RecordValidator interface {
	Validate(id string, meta Metadata) (Record, error)
}

// Pipeline composes a HeaderParser and a RecordValidator.
// It holds no state beyond its two collaborators and is safe for concurrent use
// when they are.
type Pipeline struct {
	parser    HeaderParser
	validator RecordValidator
}

// NewPipeline creates a new Pipeline.
func NewPipeline(parser HeaderParser, validator RecordValidator) *Pipeline {
	return &Pipeline{parser: parser, validator: validator}
}

// Load parses and validates one file. The returned record carries the file
// body; on failure no partial record is produced.
func (p *Pipeline) Load(id, content string) (Record, error) {
	if p.parser == nil || p.validator == nil {
		return Record{}, errors.New("pipeline is not configured")
	}

	h, err := p.parser.Parse(content)
	if err != nil {
		return Record{}, err
	}

	rec, err := p.validator.Validate(id, h.Metadata)
	if err != nil {
		return Record{}, err
	}
	rec.Body = h.Body

	return rec, nil
}
