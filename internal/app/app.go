package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "expand":
		return runExpand(args[1:])
	case "score":
		return runScore(args[1:])
	case "scan", "run-once":
		return runScan(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "matwatch CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  matwatch <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health    Verify configuration, watchlist, and database connectivity")
	fmt.Fprintln(os.Stderr, "  validate  Validate a watchlist file against the v1 schema")
	fmt.Fprintln(os.Stderr, "  expand    Print the query variants derived from the watchlist")
	fmt.Fprintln(os.Stderr, "  score     Score an ad-hoc headline against a tracked material")
	fmt.Fprintln(os.Stderr, "  scan      Run one full scan: fetch, dedupe, score, export, alert")
	fmt.Fprintln(os.Stderr, "  run-once  Alias for scan")
	fmt.Fprintln(os.Stderr, "  serve     Start the Echo API server over stored runs")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"matwatch <command> -h\" for command-specific flags.")
}
