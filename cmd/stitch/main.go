package main

import (
	"os"

	"trip-stitcher/internal/core/logger"
)

func main() {
	defer logger.Sync()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
