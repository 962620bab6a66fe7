package main

import (
	"os"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
