package header

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/exemplar/pkg/core"
)

func TestParse_CorpusHeaders(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		title    string
		tags     []string
		body     string
		platform string
		mode     string
	}{
		{
			name:     "platform key",
			content:  "/* {\"title\":\"Serial.print\",\"platform\":\"arduino\",\"tags\":[\"arduino\"]} */\nvoid setup() {}\n",
			title:    "Serial.print",
			platform: "arduino",
			tags:     []string{"arduino"},
			body:     "void setup() {}\n",
		},
		{
			name:    "mode key",
			content: "/* {\"title\":\"blink (2 LEDs)\",\"mode\":\"arduino\",\"tags\":[\"arduino\"]} */\n#define RED_LED_PIN 0",
			title:   "blink (2 LEDs)",
			mode:    "arduino",
			tags:    []string{"arduino"},
			body:    "#define RED_LED_PIN 0",
		},
		{
			name:    "unicode title and crlf",
			content: "/* {\"title\":\"types composés\",\"mode\":\"unix\",\"tags\":[\"plain\"]} */\r\n#include <stdio.h>\r\n",
			title:   "types composés",
			mode:    "unix",
			tags:    []string{"plain"},
			body:    "#include <stdio.h>\r\n",
		},
		{
			name:    "leading blank lines and bom",
			content: "\uFEFF\n   \n// {\"title\":\"t\",\"tags\":[\"b\",\"a\"]}\nx = 1\n",
			title:   "t",
			tags:    []string{"b", "a"},
			body:    "x = 1\n",
		},
		{
			name:    "header only",
			content: "# {\"title\":\"only\"}",
			title:   "only",
			body:    "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, err := Parse(tc.content)
			require.NoError(t, err)

			assert.Equal(t, tc.title, h.Metadata["title"].Str)
			assert.Equal(t, tc.body, h.Body)
			if tc.platform != "" {
				assert.Equal(t, tc.platform, h.Metadata["platform"].Str)
			}
			if tc.mode != "" {
				assert.Equal(t, tc.mode, h.Metadata["mode"].Str)
			}
			if tc.tags != nil {
				assert.Equal(t, core.KindList, h.Metadata["tags"].Kind)
				assert.Equal(t, tc.tags, h.Metadata["tags"].List)
			} else {
				_, ok := h.Metadata["tags"]
				assert.False(t, ok)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"only whitespace", "\n\n  \n"},
		{"first line is code", "#include <stdio.h>\n/* {\"title\":\"x\"} */\n"},
		{"plain code", "int main() { return 0; }\n"},
		{"unterminated block", "/* {\"title\":\"x\"}\n*/\n"},
		{"two comments on one line", "/* {\"title\":\"x\"} */ /* {} */\n"},
		{"code after comment", "/* {\"title\":\"x\"} */ int x;\n"},
		{"broken json", "/* {\"title\":\"x\", } */\n"},
		{"array payload", "/* [\"x\"] */\n"},
		{"scalar payload", "// \"title\"\n"},
		{"trailing data", "/* {\"title\":\"x\"} {\"tags\":[]} */\n"},
		{"empty comment", "/**/\n"},
		{"invalid utf-8 in header", "/* {\"title\":\"bad\xff\"} */\nbody\n"},
		{"invalid utf-8 in body", "/* {\"title\":\"ok\"} */\n\xfe\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, err := Parse(tc.content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrMalformedHeader), "got %v", err)
			assert.Nil(t, h.Metadata)

			var he *core.HeaderError
			require.True(t, errors.As(err, &he))
			assert.NotEmpty(t, he.Reason)
		})
	}
}

func TestParse_ValueKinds(t *testing.T) {
	h, err := Parse(`/* {"title":"t","tags":[],"mixed":["a",1],"n":3,"flag":true,"obj":{"a":"b"},"nil":null} */`)
	require.NoError(t, err)

	assert.Equal(t, core.KindList, h.Metadata["tags"].Kind)
	assert.Empty(t, h.Metadata["tags"].List)
	assert.Equal(t, core.KindOther, h.Metadata["mixed"].Kind)
	assert.Equal(t, core.KindOther, h.Metadata["n"].Kind)
	assert.Equal(t, core.KindOther, h.Metadata["flag"].Kind)
	assert.Equal(t, core.KindOther, h.Metadata["obj"].Kind)
	assert.Equal(t, core.KindOther, h.Metadata["nil"].Kind)
	assert.Nil(t, h.Metadata["nil"].Raw)
}

func TestParser_CommentStyles(t *testing.T) {
	payload := `{"title":"x"}`
	for _, style := range DefaultCommentStyles() {
		t.Run(style.Name, func(t *testing.T) {
			line := style.Open + " " + payload
			if style.Close != "" {
				line += " " + style.Close
			}
			h, err := Parse(line + "\nbody")
			require.NoError(t, err)
			assert.Equal(t, "x", h.Metadata["title"].Str)
			assert.Equal(t, "body", h.Body)
		})
	}

	t.Run("restricted styles", func(t *testing.T) {
		p := New(WithCommentStyles(HashLine))
		_, err := p.Parse("/* " + payload + " */\n")
		assert.ErrorIs(t, err, core.ErrMalformedHeader)

		h, err := p.Parse("# " + payload + "\n")
		require.NoError(t, err)
		assert.Equal(t, "x", h.Metadata["title"].Str)
	})
}

func TestParser_YAMLDecoder(t *testing.T) {
	p := New(WithDecoder(NewYAMLDecoder()))

	h, err := p.Parse("/* {title: blink, mode: arduino, tags: [arduino, leds]} */\nvoid loop() {}")
	require.NoError(t, err)
	assert.Equal(t, "blink", h.Metadata["title"].Str)
	assert.Equal(t, []string{"arduino", "leds"}, h.Metadata["tags"].List)
	assert.Equal(t, "void loop() {}", h.Body)

	// Strict JSON is still accepted.
	h, err = p.Parse(`/* {"title":"Serial.print","tags":["arduino"]} */`)
	require.NoError(t, err)
	assert.Equal(t, "Serial.print", h.Metadata["title"].Str)

	_, err = p.Parse("/* title: blink */")
	assert.ErrorIs(t, err, core.ErrMalformedHeader)

	_, err = New().Parse("/* {title: blink} */")
	assert.ErrorIs(t, err, core.ErrMalformedHeader, "json decoder must reject unquoted keys")
}

func TestDefaultDecoders(t *testing.T) {
	decoders := DefaultDecoders()
	for name, d := range decoders {
		assert.Equal(t, name, d.Name())
	}
	assert.Len(t, decoders, 2)
}
