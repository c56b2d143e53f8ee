package main

import (
	"os"

	"github.com/hojanyaz/hr-psychobot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
