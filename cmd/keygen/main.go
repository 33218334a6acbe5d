package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/carpool-scheduler-api/pkg/auth"
	"github.com/arnavshah/carpool-scheduler-api/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <clubID>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.APIMasterSecret == "" {
		fmt.Println("Error: API_MASTER_SECRET not found in .env")
		os.Exit(1)
	}

	clubID := os.Args[1]
	apiKey := auth.New(cfg).GenerateHMACKey(clubID)
	fmt.Printf("Generated Key for %s:\n%s\n", clubID, apiKey)
}
