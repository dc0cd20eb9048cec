// Package header extracts the single-line metadata comment that opens every
// example file and decodes its payload.
//
// The header is the first non-empty line of the file. It must be a comment in
// one of the configured styles and wrap exactly one structured object:
//
//	/* {"title":"blink (2 LEDs)","mode":"arduino","tags":["arduino"]} */
//	# {"title":"matrix product","platform":"python","tags":["python"]}
//
// Decoding is delegated to a Decoder. JSONDecoder is strict and is the
// default; YAMLDecoder also accepts flow mappings with unquoted keys.
//
// Parsing is all-or-nothing: any failure yields an error matching
// core.ErrMalformedHeader and no metadata.
package header
