// Command policysim serves and renders the LMIC policy simulation dashboard.
package main

import (
	"context"
	"os"

	"github.com/raysh454/policysim/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
