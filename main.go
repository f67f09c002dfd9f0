package main

import (
	"roomdisplay/core/logger"
	"roomdisplay/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
	}
}
