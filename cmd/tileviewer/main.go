package main

import (
	"fmt"
	"os"

	"tileviewer/internal/app"
)

func main() {
	fmt.Println("Tile Viewer - WebGPU UBO tilemap")
	fmt.Println("Controls:")
	fmt.Println("  WASD    : Scroll the tilemap")
	fmt.Println("  Arrows  : Pan the camera")
	fmt.Println("  = / -   : Zoom in / out")
	fmt.Println("  Escape  : Exit")
	fmt.Println()

	application, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer application.Cleanup()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
