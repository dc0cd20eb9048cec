// Package exemplar is the composition root for the example catalog.
//
// An example corpus is a directory of small source files, each opening with a
// one-line comment that carries a structured header:
//
//	/* {"title": "Serial.print", "platform": "arduino", "tags": ["arduino"]} */
//
// Exemplar reads those headers, validates them against the record schema and
// keeps an in-memory catalog indexed by id, tag and platform.
//
// Layers:
//
//   - pkg/header: finds and decodes the header comment.
//   - pkg/schema: turns decoded metadata into a core.Record.
//   - pkg/catalog: thread-safe store with derived indexes and change events.
//   - pkg/query: read-only façade yielding lazy sequences.
//   - pkg/adapters: filesystem scanning and watching, HTTP, lifecycle events.
//
// Usage:
//
//	eng, err := exemplar.Open("./examples",
//		exemplar.WithLang("fr"),
//		exemplar.WithLogger(logger),
//	)
//	report, err := eng.Scan(ctx)
//	for rec := range eng.Query.ByTag("arduino") {
//		fmt.Println(rec.Title)
//	}
package exemplar
