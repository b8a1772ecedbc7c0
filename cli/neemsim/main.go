package main

import (
	"os"

	neemsimcmder "github.com/knowrobco/neemsim/cmd/neemsim"
)

func main() {
	cmd := neemsimcmder.NewNeemsimCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
