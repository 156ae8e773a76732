// Command mailbox-log is a tool for viewing and analyzing mailbox trace files.
//
// Trace files are written by log.FileLogger when a mailbox is configured
// with a TraceLogger, for example by mailbox-demo -trace.
//
// Usage:
//
//	mailbox-log <command> [flags] <file.mblog>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	mailbox-log view demo.mblog
//
//	# View only drops
//	mailbox-log view --category drop demo.mblog
//
//	# Export to CSV
//	mailbox-log export --format csv -o demo.csv demo.mblog
//
//	# Keep only one mailbox
//	mailbox-log filter --mailbox-id 3f2a9c1e-... -o one.mblog demo.mblog
//
//	# Show statistics
//	mailbox-log stats demo.mblog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mailbox-go/mailbox-go/cmd/mailbox-log/commands"
)

const usage = `mailbox-log - Mailbox Trace Analyzer

Usage:
  mailbox-log <command> [flags] <file.mblog>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "mailbox-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet creates a sub-command flag set with the shared usage layout.
func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "mailbox-log %s - %s\n\nUsage:\n  mailbox-log %s [flags] <file.mblog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and returns the trace file path.
func parse(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View trace file in human-readable format")
	category := fs.String("category", "", "Filter by category (subscription, delivery, drop, lifecycle)")
	mailboxID := fs.String("mailbox", "", "Filter by mailbox ID")
	key := fs.String("key", "", "Filter by key")
	path := parse(fs, args)

	filter := commands.ViewFilter{MailboxID: *mailboxID, Key: *key}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export trace file to JSONL or CSV format")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := parse(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter trace file and write to new file")
	var opts commands.FilterOptions
	fs.StringVar(&opts.Output, "o", "", "Output file (required)")
	fs.StringVar(&opts.MailboxID, "mailbox-id", "", "Filter by mailbox ID")
	fs.StringVar(&opts.Key, "key", "", "Filter by key")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (subscription, delivery, drop, lifecycle)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter events at or after this time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter events before this time (RFC3339)")
	path := parse(fs, args)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file required (-o)")
		fs.Usage()
		os.Exit(1)
	}

	count, err := commands.RunFilter(path, opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", count, opts.Output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the trace file")
	path := parse(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
