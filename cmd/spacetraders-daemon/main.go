package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ropable/spacetraders-api/internal/adapters/cli"
	"github.com/ropable/spacetraders-api/internal/infrastructure/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: search standard paths)")
	socketPath := flag.String("socket", "", "Unix socket path (default: daemon.socket_path from config)")
	flag.Parse()

	fmt.Println("SpaceTraders Daemon")
	fmt.Println("===================")

	cfg := config.MustLoadConfig(*configPath)

	socket := cfg.Daemon.SocketPath
	if *socketPath != "" {
		socket = *socketPath
	}

	if err := cli.RunDaemon(cfg, socket); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}
