// Command contactctl talks to a deployed contact endpoint: it checks transport
// health and sends a message through the same client flow the site form uses.
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
