// Msgrepo is a CLI tool and HTTP server for extracting normalized
// metadata and attachments from Outlook .msg files.
package main

import (
	"fmt"
	"os"
	"strings"
)

// version is the application version, embedded in API responses and used
// for static asset cache-busting.
const version = "1.0.0"

// usage prints command-line help to stderr.
func usage() {
	fmt.Fprintf(os.Stderr, `msgrepo v%s
Outlook .msg metadata extractor

Usage:
  msgrepo view    <file>                Show decoded message summary
  msgrepo process <file> [file...]      Process files and print results
  msgrepo xlsx    <out.xlsx> <file...>  Export metadata spreadsheet
  msgrepo zip     <out.zip> <file...>   Export attachment bundle
  msgrepo serve   [port] [options]      Start web interface (default port 8080)
  msgrepo help                          Show this help message

Serve options:
  --base-path <path>  Serve under a URL prefix (e.g. /msgrepo)

Examples:
  msgrepo view mail.msg
  msgrepo process inbox/*.msg
  msgrepo xlsx emails_export.xlsx inbox/*.msg
  msgrepo zip all_attachments.zip inbox/*.msg
  msgrepo serve 9090
`, version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := strings.ToLower(os.Args[1])
	args := os.Args[2:]

	switch cmd {
	case "help", "-h", "--help":
		usage()
	case "version", "-v", "--version":
		fmt.Println(version)
	case "healthcheck":
		cmdHealthcheck(args)
	case "view":
		requireArgs(args, 1)
		cmdView(args[0])
	case "process":
		requireArgs(args, 1)
		cmdProcess(args)
	case "xlsx":
		requireArgs(args, 2)
		cmdExportXLSX(args[0], args[1:])
	case "zip":
		requireArgs(args, 2)
		cmdExportZIP(args[0], args[1:])
	case "serve", "server", "web":
		port := "8080"
		basePath := ""
		for i := 0; i < len(args); i++ {
			if args[i] == "--base-path" && i+1 < len(args) {
				basePath = args[i+1]
				i++
			} else {
				port = args[i]
			}
		}
		cmdServe(port, basePath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

// requireArgs exits with an error when fewer than n arguments were given.
func requireArgs(args []string, n int) {
	if len(args) < n {
		fmt.Fprintln(os.Stderr, "Error: file path required")
		usage()
		os.Exit(1)
	}
}
