// cmd/javaflow/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"javaflow/cmd/javaflow/commands"
)

const version = "0.1.0"

// commandAliases mirrors the teacher's short-form dispatch table.
var commandAliases = map[string]string{
	"a": "analyze",
	"r": "report",
	"s": "serve",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return
	}
	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Println("javaflow " + version)
		return
	}

	switch cmd {
	case "analyze":
		if err := commands.AnalyzeCommand(args[1:]); err != nil {
			log.Fatalf("analyze: %v", err)
		}
	case "report":
		if err := commands.ReportCommand(args[1:]); err != nil {
			log.Fatalf("report: %v", err)
		}
	case "serve":
		if err := commands.ServeCommand(args[1:]); err != nil {
			log.Fatalf("serve: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`javaflow - terminal-outcome probability analyzer for JVM bytecode

Usage:
  javaflow analyze --case <name> --abs {int|str} [--interval] [--bricks]
                    [--no-widen] [--max-iterations N] [--all-domains]
                    [--watch] [--db DSN]
  javaflow report  --case <name> [--db DSN] [--limit N]
  javaflow serve   [--port N]
  javaflow version

Aliases: a=analyze, r=report, s=serve`)
}
