package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
			os.Exit(2)
		}
		log.Fatalf("flashctl: %v", err)
	}
}

var errUsage = errors.New("invalid usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: flashctl <command> [options] [arguments]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  init [-force]              Format pages without marker, all pages if forced")
	fmt.Fprintln(w, "  hsv <h> <s> <v>            Save current color")
	fmt.Fprintln(w, "  rgb <r> <g> <b>            Save current color given as RGB")
	fmt.Fprintln(w, "  show                       Print current color")
	fmt.Fprintln(w, "  rgb-add <r> <g> <b> <name> Save named color")
	fmt.Fprintln(w, "  rgb-add-current <name>     Save current color under the name")
	fmt.Fprintln(w, "  rgb-apply <name>           Make named color the current one")
	fmt.Fprintln(w, "  rgb-del <name>             Delete named color")
	fmt.Fprintln(w, "  list                       List named colors")
	fmt.Fprintln(w, "  count                      Print number of named color records")
	fmt.Fprintln(w, "  records [-page n]          Dump raw records of the page")
	fmt.Fprintln(w, "  export <url>               Upload image of data pages")
	fmt.Fprintln(w, "  import <url>               Restore data pages from image")
	fmt.Fprintln(w, "Options common to all commands: -config <path>, -image <path>")
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}
