// Command rms-admin runs maintenance tasks against the records database.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand(&App{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
