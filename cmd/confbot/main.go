package main

import (
	"log"

	"github.com/m3rciful/confbot/app"
	corecmd "github.com/m3rciful/confbot/core/cmd"
	coreconfig "github.com/m3rciful/confbot/core/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		Bootstrap: func(cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
			return app.New(cfg)
		},
	})
	if err != nil {
		log.Fatalf("confbot: %v", err)
	}
}
