package exemplar_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/exemplar"
)

// Example_basic builds a catalog from a small corpus and queries it.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "exemplar-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	files := map[string]string{
		"serial.c": "/* {\"title\":\"Serial.print\",\"platform\":\"arduino\",\"tags\":[\"arduino\"]} */\nvoid setup() {}\n",
		"blink.c":  "/* {\"title\":\"blink (2 LEDs)\",\"mode\":\"arduino\",\"tags\":[\"arduino\"]} */\nvoid loop() {}\n",
		"types.c":  "/* {\"title\":\"composite types\",\"mode\":\"unix\"} */\nint main() {}\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			log.Fatal(err)
		}
	}

	eng, err := exemplar.Open(tmpDir)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := eng.Scan(context.Background()); err != nil {
		log.Fatal(err)
	}

	for rec := range eng.Query.ByTag("arduino") {
		fmt.Println(rec.Title)
	}
	for rec := range eng.Query.ByTag("plain") {
		fmt.Println(rec.Title, rec.Tags)
	}

	// Output:
	// blink (2 LEDs)
	// Serial.print
	// composite types [plain]
}
