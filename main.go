package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "arena.db", "SQLite database path")
	maxPlayers := flag.Uint("max-players", 64, "player cap (humans + bots)")
	halfExtent := flag.Float64("half-extent", 24, "world half extent")
	botCount := flag.Uint("bots", 0, "number of AI bots")
	spiderCount := flag.Uint("spiders", 0, "number of hostile spiders")
	publishSpiders := flag.Bool("publish-spiders", false, "include spiders in the snapshot")
	spiderRespawn := flag.Uint("spider-respawn-ticks", 0, "spider respawn delay in ticks (0 = terminal death)")
	flag.Parse()

	db, err := OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	analytics := NewAnalytics(db)
	auth := NewAuth(db)

	engine := NewEngine()
	engine.Start(GameConfig{
		MaxPlayers:         uint32(*maxPlayers),
		WorldHalfExtent:    float32(*halfExtent),
		BotCount:           uint32(*botCount),
		SpiderCount:        uint32(*spiderCount),
		PublishSpiders:     *publishSpiders,
		SpiderRespawnTicks: uint32(*spiderRespawn),
	})

	hub := NewHub(engine, auth, analytics)
	go hub.Run()

	mux := SetupRoutes(hub)
	server := &http.Server{Addr: *addr, Handler: mux}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Arena server listening on %s (tick rate %d Hz)", *addr, TickRate)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down...")
	server.Close()
	engine.Stop()
	analytics.Close()
}
