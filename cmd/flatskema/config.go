package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type config struct {
	Workers int
	Lang    string
}

// loadConfig reads flag defaults from the environment, with a .env file as a
// convenience for local runs.
func loadConfig() *config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	return &config{
		Workers: getEnvInt("FLATSKEMA_WORKERS", 1),
		Lang:    getEnv("FLATSKEMA_LANG", "en"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
