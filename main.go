// Package main provides the entry point for the panel router.
package main

import (
	"log"
	"os"

	"panel-router/internal/cli"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
