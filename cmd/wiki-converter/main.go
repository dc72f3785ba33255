package main

import "os"

// Build-time variables are declared in root.go and set via -ldflags.

func main() {
	os.Exit(Execute())
}
