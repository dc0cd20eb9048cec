package header

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/exemplar/pkg/core"
)

const bom = "\uFEFF"

// Parser locates and decodes example headers.
// A Parser is immutable after construction and safe for concurrent use.
type Parser struct {
	styles  []CommentStyle
	decoder Decoder
}

// Option configures a Parser.
type Option func(*Parser)

// WithCommentStyles replaces the recognized comment syntaxes.
func WithCommentStyles(styles ...CommentStyle) Option {
	return func(p *Parser) {
		p.styles = append([]CommentStyle(nil), styles...)
	}
}

// WithDecoder sets the payload decoder. A nil decoder is ignored.
func WithDecoder(d Decoder) Option {
	return func(p *Parser) {
		if d != nil {
			p.decoder = d
		}
	}
}

// New creates a Parser. By default it recognizes DefaultCommentStyles and
// decodes strict JSON.
func New(opts ...Option) *Parser {
	p := &Parser{
		styles:  DefaultCommentStyles(),
		decoder: NewJSONDecoder(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// Parse decodes content with the default Parser.
func Parse(content string) (core.Header, error) {
	return defaultParser.Parse(content)
}

// Parse extracts the header from the first non-empty line of content and
// returns its metadata together with the text that follows that line.
func (p *Parser) Parse(content string) (core.Header, error) {
	if !utf8.ValidString(content) {
		return core.Header{}, &core.HeaderError{Reason: "content is not valid UTF-8"}
	}
	content = strings.TrimPrefix(content, bom)

	lineNo := 0
	rest := content
	for rest != "" {
		lineNo++

		line := rest
		rest = ""
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line, rest = line[:i], line[i+1:]
		}
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}

		payload, ok := p.unwrap(line)
		if !ok {
			return core.Header{}, &core.HeaderError{Line: lineNo, Reason: "first line is not a recognized comment"}
		}

		meta, err := p.decoder.Decode(payload)
		if err != nil {
			return core.Header{}, &core.HeaderError{Line: lineNo, Reason: "cannot decode payload", Err: err}
		}

		return core.Header{Metadata: meta, Body: rest}, nil
	}

	return core.Header{}, &core.HeaderError{Reason: "no header line"}
}

func (p *Parser) unwrap(line string) (string, bool) {
	for _, s := range p.styles {
		if inner, ok := s.unwrap(line); ok {
			return inner, true
		}
	}
	return "", false
}

var _ core.HeaderParser = (*Parser)(nil)
