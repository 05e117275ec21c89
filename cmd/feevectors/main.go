// Command feevectors prints the fee contract vectors as JSON so other
// runtimes (the payment edge function, the mobile app) can test their copy
// of the rates against this one. With -verify it checks every vector
// against the Go calculator instead and exits non-zero on a mismatch.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"mealpay/internal/services/fees"
)

func main() {
	verify := flag.Bool("verify", false, "check the vectors against the calculator")
	out := flag.String("o", "", "write the vectors to this file instead of stdout")
	flag.Parse()

	vectors := fees.ContractVectors()

	if *verify {
		failed := 0
		for _, v := range vectors {
			if err := fees.Verify(v); err != nil {
				log.Printf("FAIL %s: %v", v.Name, err)
				failed++
			}
		}
		if failed > 0 {
			log.Fatalf("%d of %d vectors failed", failed, len(vectors))
		}
		log.Printf("all %d vectors passed", len(vectors))
		return
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal("Failed to create output file:", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(vectors); err != nil {
		log.Fatal("Failed to encode vectors:", err)
	}
}
