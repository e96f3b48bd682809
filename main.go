package main

import (
	"github.com/blocktix/btx/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for contract addresses / RPC overrides.
	_ = godotenv.Load()

	cmd.Execute()
}
