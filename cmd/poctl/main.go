package main

import (
	"os"

	"github.com/joseph-ayodele/purchase-orders/cmd/poctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
