package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Secrets are the credentials that never belong in the HCL file.
type Secrets struct {
	// ChatToken is the bot account's OAuth token ("oauth:..." form).
	ChatToken string
	// WalletKey is the bearer credential for the currency service.
	WalletKey string
}

// LoadSecrets reads credentials from the environment, seeding it from a .env
// file first when one is present.
func LoadSecrets() (Secrets, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	s := Secrets{
		ChatToken: os.Getenv("TWITCH_TOKEN"),
		WalletKey: os.Getenv("WALLET_API_KEY"),
	}
	if s.ChatToken == "" {
		return Secrets{}, fmt.Errorf("TWITCH_TOKEN is required")
	}
	if s.WalletKey == "" {
		return Secrets{}, fmt.Errorf("WALLET_API_KEY is required")
	}
	return s, nil
}
