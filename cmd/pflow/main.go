package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	ctx := context.Background()
	rootCmd := newRootCmd()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
