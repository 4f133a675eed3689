package main

import (
	"log/slog"
	"os"

	"eval360/internal/app/server"
)

func main() {
	if err := server.Run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
