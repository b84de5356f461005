// Command di reports where disk space is used below a directory.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/di/internal/cli"
)

// Version is set at build time.
var version = "unknown - unofficial build"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
