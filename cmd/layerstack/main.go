// Command layerstack compiles device settings from a base document and a
// stack of layers.
//
// Usage:
//
//	# Compile a project against a directory of base documents
//	layerstack compile --catalog ./profiles --project stack.yaml
//
//	# Show what each layer changes
//	layerstack preview --catalog ./profiles --project stack.yaml
//
//	# Export the compiled settings as INI
//	layerstack export --catalog ./profiles --project stack.yaml > config.ini
//
//	# Recompile whenever the project or the catalog changes
//	layerstack watch --catalog ./profiles --project stack.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
