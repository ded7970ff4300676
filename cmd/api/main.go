package main

import (
	"log"
	"net/http"

	"examflow/internal/api"
	"examflow/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("examflow api listening on %s queue=%s", cfg.APIAddr, cfg.TemporalTaskQueue)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
