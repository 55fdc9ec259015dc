// cmd/riskaudit/main.go
//
// Entry point for the riskaudit CLI. Running `riskaudit` with no subcommand
// opens the terminal UI in the current directory.

package main

import "github.com/kingrea/riskaudit/internal/cli"

func main() {
	cli.Execute()
}
