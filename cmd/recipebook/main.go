// Recipebook keeps a small collection of recipes with ingredient amounts
// that rescale with the serving count.
//
// Usage:
//
//	recipebook [shell]                 interactive shell
//	recipebook list [--watch]
//	recipebook show N
//	recipebook add | edit N
//	recipebook delete N
//	recipebook scale N SERVINGS
//	recipebook import FILE
//	recipebook export [--format json|yaml|toml] [--out FILE]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
