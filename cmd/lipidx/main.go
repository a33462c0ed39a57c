// LipidX - Lipid peak table analysis tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/LipidX/cmd/lipidx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
