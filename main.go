package main

import (
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	flag.Parse()

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run(command string) error {
	switch command {
	case "version":
		fmt.Fprintf(os.Stdout, "Crosspointx %s\n", Version)
		return nil
	case "serve":
		return serve()
	case "migrate":
		return runMigrations()
	case "dev:fixtures":
		return loadFixtures()
	case "help":
		fmt.Fprint(os.Stdout, help())
		return nil
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
		return nil
	}
}

func help() string {
	return fmt.Sprintf(`
Crosspointx is the backend for the Crosspointx recreational paintball ladder:
check-ins, team assignment, rated results, and the leaderboard.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    dev:fixtures create default data for quick testing during development
    help         display this help
    migrate      apply database migrations
    serve        start the API server and background tasks
    version      display the current version
`,
		os.Args[0],
	)
}
