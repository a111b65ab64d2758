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
	case "filter":
		return runFilter(args[1:])
	case "extract":
		return runExtract(args[1:])
	case "dedup":
		return runDedup(args[1:])
	case "export":
		return runExport(args[1:])
	case "process", "run-once":
		return runProcess(args[1:])
	case "review":
		return runReview(args[1:])
	case "publish":
		return runPublish(args[1:])
	case "serve":
		return runServe(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "health":
		return runHealth(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "strikewatch CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  strikewatch <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  filter    Keyword-filter scraped messages and collapse near-duplicates")
	fmt.Fprintln(os.Stderr, "  extract   Turn filtered messages into incident records via the LLM")
	fmt.Fprintln(os.Stderr, "  dedup     Cluster incident records and merge duplicates")
	fmt.Fprintln(os.Stderr, "  export    Write the canonical dataset as CSV")
	fmt.Fprintln(os.Stderr, "  process   Run filter + extract + dedup + export in sequence")
	fmt.Fprintln(os.Stderr, "  run-once  Alias for process")
	fmt.Fprintln(os.Stderr, "  review    Second-model review pass over the dataset")
	fmt.Fprintln(os.Stderr, "  publish   Load the canonical dataset into Postgres")
	fmt.Fprintln(os.Stderr, "  serve     Start the read-only API server")
	fmt.Fprintln(os.Stderr, "  validate  Validate incident JSON files against the schema")
	fmt.Fprintln(os.Stderr, "  health    Verify database connectivity")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"strikewatch <command> -h\" for command-specific flags.")
}
