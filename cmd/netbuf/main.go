// Package main is the entry point for the netbuf CLI.
//
// Usage:
//
//	netbuf [flags] <command> [subcommand] [args]
//
// Commands:
//
//	serve    - Run a line or length-prefixed echo server
//	send     - Send messages to a server and print the replies
//	frames   - Encode YAML documents to msgpack frames and decode them back
//	capture  - List, show, replay and drop captured sessions
//	inspect  - Load bytes into a buffer and draw its regions
//	config   - Create or show the configuration file
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/netbuf/cmd/netbuf/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
