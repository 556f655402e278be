package main

import (
	"flag"
	"log"

	"tasklist/internal/app"
	"tasklist/internal/config"
)

// @title                       Task List API
// @version                     1.0
// @description                 Task lists with e-mail verified accounts.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	flag.Parse()

	if err := app.Run(*configPath); err != nil {
		log.Fatalf("server: %v", err)
	}
}
