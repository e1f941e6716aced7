// Command dutree reports disk usage as the handful of paths that each
// hold a significant share of the space under a directory.
package main

import (
	"fmt"
	"os"

	"github.com/ossobv/dutree/internal/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
