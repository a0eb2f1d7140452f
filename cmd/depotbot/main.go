package main

import (
	"log"

	"depotbot/core/cmd"
	"depotbot/internal/bot"
)

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config/config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(cfg cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			return bot.Bootstrap(cfg.(*bot.Config))
		},
	})
	if err != nil {
		log.Fatalf("depotbot: %v", err)
	}
}
