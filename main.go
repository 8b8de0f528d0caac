package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"lembarkolab/config/database"
	"lembarkolab/pkg/logger"
	"lembarkolab/router"
	"lembarkolab/socket"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	db := database.Connect()
	defer db.Close()

	hub := socket.NewHub()
	go hub.Run()

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:3000"
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Sugar.Infof("Backend listening on %s", addr)
	if err := http.ListenAndServe(addr, router.Setup(db, hub, appURL)); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
