package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/exemplar"
)

// writeRecords renders records as text, json or yaml.
func writeRecords(w io.Writer, format string, records []exemplar.Record) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(records)
	case "text", "":
		for _, rec := range records {
			line := fmt.Sprintf("%s - %s", rec.ID, rec.Title)
			if ctx := rec.Context(); ctx != "" {
				line += fmt.Sprintf(" [%s]", ctx)
			}
			fmt.Fprintf(w, "%s %v\n", line, rec.Tags)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}
