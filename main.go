package main

import (
	"github.com/joho/godotenv"

	"github.com/kesslerio/local-whisper-openclaw-skill/cmd"
)

func main() {
	// A .env next to the working directory may carry WHISPER_* overrides.
	_ = godotenv.Load()

	cmd.Execute()
}
