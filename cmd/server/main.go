package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voice-ci/engine/internal/config"
	"github.com/voice-ci/engine/internal/health"
	"github.com/voice-ci/engine/internal/replay"
	"github.com/voice-ci/engine/internal/session"
	"github.com/voice-ci/engine/internal/stats"
	"github.com/voice-ci/engine/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	demoMode := flag.Bool("demo", false, "Run the built-in demo call on startup")
	replayPath := flag.String("replay", "", "Replay a JSONL event timeline on startup")
	replayRoom := flag.String("room", "replay-001", "Room id for -replay")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	platform, err := config.LoadPlatform()
	if err != nil {
		log.Fatalf("Failed to read platform env: %v", err)
	}
	log.Printf("voice-ci engine starting: process=%s region=%s port=%d",
		platform.ProcessID, platform.Region, cfg.Server.Port)

	registry := session.NewRegistry(cfg.Rules.SessionRules())
	tracker := stats.NewTracker()
	broadcaster := ws.NewBroadcaster(registry, cfg.Stream.BroadcastThrottle, cfg.Stream.SnapshotInterval)
	reporter := health.NewReporter(platform.ProcessID, platform.Region, registry)
	server := ws.NewServer(registry, broadcaster, tracker, reporter, cfg.Server.AllowedOrigins, cfg.Server.AuthToken)

	// The platform may assign this process a room before any client calls in.
	if platform.InitialRoomID != "" {
		log.Printf("Auto-creating platform-assigned room: %s", platform.InitialRoomID)
		if _, created := registry.CreateRoom(platform.InitialRoomID); created {
			tracker.RoomCreated()
		}
	}

	if *demoMode {
		go func() {
			log.Println("Running demo call (expected result: FAIL, missing required step)")
			st, err := replay.Run(registry, replay.DemoRoomID, replay.DemoTimeline(time.Now().UnixMilli()))
			if err != nil {
				log.Printf("demo replay error: %v", err)
				return
			}
			tracker.RecordVerdict(st)
		}()
	}

	if *replayPath != "" {
		events, err := replay.LoadTimeline(*replayPath)
		if err != nil {
			log.Fatalf("Failed to load timeline: %v", err)
		}
		go func() {
			st, err := replay.Run(registry, *replayRoom, events)
			if err != nil {
				log.Printf("replay error: %v", err)
				return
			}
			tracker.RecordVerdict(st)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		os.Exit(0)
	}()

	if err := ws.ListenAndServe(cfg.Server.Host, cfg.Server.Port, server.Handler()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
