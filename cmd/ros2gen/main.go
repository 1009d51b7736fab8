// Package main provides the ros2gen CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/ros2rust/ros2gen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
