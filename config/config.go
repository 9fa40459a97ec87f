// Package config loads client settings from the environment, with a .env
// file picked up when present.
package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the client needs to reach its backend.
type Config struct {
	// ServerURL is the websocket address of the replication backend.
	ServerURL string
	// ModuleName names the backend module to attach to.
	ModuleName string
	// TokenPath is where the opaque auth token is persisted across runs.
	TokenPath string
	// WalletAddress, when set, links the player's wallet on enter_game and
	// turns the wallet gate on.
	WalletAddress string
	// MetricsAddr serves prometheus metrics when non-empty.
	MetricsAddr string
}

// Load reads the environment. A missing .env file is fine; explicit env
// vars always win because godotenv does not overwrite them.
func Load(logger *slog.Logger) Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
	return Config{
		ServerURL:     getenv("MOVEGAME_SERVER_URL", "ws://localhost:3000/ws"),
		ModuleName:    getenv("MOVEGAME_MODULE", "movegame"),
		TokenPath:     getenv("MOVEGAME_TOKEN_PATH", ".movegame_token"),
		WalletAddress: os.Getenv("MOVEGAME_WALLET_ADDRESS"),
		MetricsAddr:   getenv("MOVEGAME_METRICS_ADDR", ":9400"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
