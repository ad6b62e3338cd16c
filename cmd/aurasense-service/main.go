package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/aurasense/aurasense-server/voiceservice"
)

func main() {
	// Local development keeps credentials in a .env file; absence is fine.
	_ = godotenv.Load()

	if err := voiceservice.Run(); err != nil {
		os.Exit(1)
	}
}
