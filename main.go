// Command governor runs the conversational context and quota service.
package main

import (
	"os"

	"github.com/xiaot623/gogo/governor/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
