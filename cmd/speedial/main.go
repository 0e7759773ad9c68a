package main

import (
	"log"

	"github.com/speedial/speedial/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ speedial failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ speedial exited with error: %v", err)
	}
}
