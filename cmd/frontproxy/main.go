// Package main provides the frontproxy command. It serves the proxy and
// offers operator tooling for discovering the upstream's endpoint layout.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
