// Package main implements the tile room server.
//
// Architecture Overview:
//   - Each player connection is a websocket upgraded by net/http and handed
//     to internal/session, which mints a player id and registers it with
//     the root actor.
//   - The root actor (internal/rootactor) is the single player-to-room
//     index: it lazily spawns room actors (internal/roomactor) and routes
//     commands and portal handoffs between them.
//   - Every room actor subscribes to one shared tick.Source and simulates
//     its room through internal/roomlogic at a fixed 10Hz.
//
// Connection flow:
//  1. Client opens a websocket to /ws and sends the protocol handshake.
//  2. Session registers with the root actor, which assigns the start room
//     and replies with the player's InitialEvent.
//  3. Client sends Move/Attack commands; the room simulates and broadcasts
//     batched events back once per tick (or immediately for direct replies
//     like Pong).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tilekeeper/server/config"
	"github.com/tilekeeper/server/internal/animation"
	"github.com/tilekeeper/server/internal/mobtemplate"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/rootactor"
	"github.com/tilekeeper/server/internal/serverctx"
	"github.com/tilekeeper/server/internal/session"
	"github.com/tilekeeper/server/internal/tick"
	"github.com/tilekeeper/server/internal/worldmap"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := loadConfig(log)

	maps, err := loadRoomMaps(envOr("MAPS_DIR", "maps"))
	if err != nil {
		log.Fatal("loading room maps", zap.Error(err))
	}
	mobs, err := loadMobTemplates(envOr("MOBS_DIR", "mobs"), config.TickRate)
	if err != nil {
		log.Fatal("loading mob templates", zap.Error(err))
	}
	playerAnimation, err := loadPlayerAnimation(envOr("PLAYER_ANIMATION_PATH", "player_animations.toml"))
	if err != nil {
		log.Fatal("loading player animation set", zap.Error(err))
	}

	ctx := serverctx.New(cfg, maps, mobs, playerAnimation)
	system := actor.NewActorSystem()
	ticks := tick.NewSource(config.TickInterval)

	rootProps := rootactor.NewProps(ctx, ticks, object.RoomID(cfg.StartRoom), log)
	rootPID, err := system.Root.SpawnNamed(rootProps, "root")
	if err != nil {
		log.Fatal("spawning root actor", zap.Error(err))
	}

	tickCtx, stopTicks := context.WithCancel(context.Background())
	defer stopTicks()
	go ticks.Run(tickCtx)

	log.Info("tile room server starting",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Int("rooms_loaded", len(maps)),
		zap.Int("mob_templates_loaded", len(mobs)),
		zap.Int("tick_rate_hz", config.TickRate),
	)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		go session.Serve(conn, system, rootPID, log)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// loadConfig reads TOML configuration from CONFIG_PATH, if set, otherwise
// falls back to defaults overridable by HOST/PORT environment variables —
// useful for container deployments that don't mount a config file.
func loadConfig(log *zap.Logger) *config.ServerConfig {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatal("loading config", zap.String("path", path), zap.Error(err))
		}
		return cfg
	}

	cfg := config.Default()
	if host := os.Getenv("HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	return cfg
}

// loadRoomMaps reads every *.toml file in dir as a room map, keyed by the
// room id declared inside it. A missing directory yields an empty, still
// valid server (useful for tests and local smoke runs).
func loadRoomMaps(dir string) (map[object.RoomID]*worldmap.RoomMap, error) {
	maps := make(map[object.RoomID]*worldmap.RoomMap)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return maps, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		m, err := worldmap.Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading map %s: %w", e.Name(), err)
		}
		maps[m.RoomID] = m
	}
	return maps, nil
}

// loadMobTemplates reads every *.toml file in dir as a set of mob
// templates, indexed by template name.
func loadMobTemplates(dir string, tickRate float64) (map[string]*mobtemplate.Template, error) {
	templates := make(map[string]*mobtemplate.Template)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return templates, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		named, err := mobtemplate.Load(filepath.Join(dir, e.Name()), tickRate)
		if err != nil {
			return nil, fmt.Errorf("loading mob templates %s: %w", e.Name(), err)
		}
		for name, tmpl := range named {
			templates[name] = tmpl
		}
	}
	return templates, nil
}

// loadPlayerAnimation reads the shared player animation set, if present. A
// missing file yields a nil set — the Initial event then carries an empty
// one, which is valid for a headless smoke run with no client attached.
func loadPlayerAnimation(path string) (*animation.Set, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	set, err := animation.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return set, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
