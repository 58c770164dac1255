// Package main is the production entry point for the ReelTune media player.
//
// ReelTune imports songs and clips into a local catalog and plays them from
// a queue:
// - Event-driven communication between services and UI
// - Dependency injection for testability
// - MVP pattern for UI decoupling
// - Repository pattern for data persistence
//
// Build:
//
//	go build -o build/reeltune ./cmd
//
// Run:
//
//	./build/reeltune
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/reeltune/reeltune/internal/app"
)

func main() {
	application, err := app.NewApplication(app.DefaultOptions())
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closed)
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}
}
