package main

import (
	"flag"

	"studyzone_backend/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to $CONFIG_PATH, then config/config.yaml)")
	flag.Parse()

	app.Run(*configPath)
}
