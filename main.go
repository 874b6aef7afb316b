package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rifqimaruf/We-are-Cooked/internal/catalog"
	"github.com/rifqimaruf/We-are-Cooked/internal/config"
	"github.com/rifqimaruf/We-are-Cooked/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	reseed := flag.Bool("init-db", false, "recreate the recipe database and exit")
	flag.Parse()

	log.Println("=== STARTING WE ARE COOKED SERVER ===")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("config:", err)
	}

	if *reseed {
		if err := catalog.Initialize(cfg.DBPath); err != nil {
			log.Fatal("initialize recipe db:", err)
		}
		log.Printf("recipe database created at %s", cfg.DBPath)
		return
	}

	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		log.Printf("recipe database missing, seeding %s", cfg.DBPath)
		if err := catalog.Initialize(cfg.DBPath); err != nil {
			log.Fatal("initialize recipe db:", err)
		}
	}

	cat, err := catalog.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("load recipe catalog:", err)
	}
	log.Printf("recipe catalog loaded: %d recipes, %d ingredients", len(cat.Recipes()), len(cat.Ingredients()))

	broadcaster := server.NewBroadcaster()
	hub := server.NewHub(cfg, cat, broadcaster)

	tcp := server.NewTCPServer(hub)
	go func() {
		if err := tcp.ListenAndServe(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			log.Fatal("tcp server failed:", err)
		}
	}()

	r := server.SetupRouter(hub)
	go func() {
		log.Printf("http server starting at :%d", cfg.HTTPPort)
		if err := r.Run(fmt.Sprintf(":%d", cfg.HTTPPort)); err != nil {
			log.Fatal("http server failed:", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("shutting down")
	tcp.Close()
	hub.Shutdown()
}
