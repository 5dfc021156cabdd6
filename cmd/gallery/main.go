package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gallery/internal/api"
	"gallery/internal/game"
	"gallery/internal/item"
	"gallery/internal/match"
	"gallery/internal/store"

	"github.com/pterm/pterm"
)

func main() {
	dbPath := flag.String("db", "gallery.db", "SQLite database path (empty = no archive)")
	players := flag.Int("players", 4, "bots per match (3 to 5)")
	matches := flag.Int("matches", 1, "matches to play; 0 plays until interrupted")
	rounds := flag.Int("rounds", 3, "rounds per match (1 to 3)")
	seed := flag.Int64("seed", 0, "first match seed (0 = random)")
	serve := flag.Bool("serve", false, "serve the history API and spectator feed")
	port := flag.String("port", "8088", "server port")
	corsOrigins := flag.String("cors", "", "comma-separated allowed CORS origins (empty = allow all for dev)")
	rateLimit := flag.Int("ratelimit", 0, "API requests per minute per client IP (0 = unlimited)")
	intermission := flag.Duration("intermission", 0, "pause between matches")
	flag.Parse()

	if *players < 3 || *players > 5 {
		log.Fatalf("players must be between 3 and 5, got %d", *players)
	}

	var st *store.Store
	if *dbPath != "" {
		var err error
		st, err = store.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
	}

	config := game.DefaultSchedulerConfig()
	config.Players = *players
	config.Matches = *matches
	config.Rounds = *rounds
	config.Seed = *seed
	config.Intermission = *intermission
	if *serve && config.Intermission == 0 {
		// Give spectators time to see the result
		config.Intermission = 5 * time.Second
	}

	scheduler := game.NewScheduler(st, config)
	scheduler.OnMatchEnd(func(m *match.Match, results []store.MatchResult) {
		printResults(m, results)
	})

	if !*serve {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		err := scheduler.Run(ctx)
		stop()
		closeStore(st)
		if err != nil {
			log.Fatalf("Scheduler error: %v", err)
		}
		return
	}

	if st == nil {
		log.Fatalf("-serve needs a database")
	}

	server := api.NewServer(st, scheduler)
	if *corsOrigins != "" {
		origins := strings.Split(*corsOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		server.SetCORSOrigins(origins)
		log.Printf("CORS restricted to: %v", origins)
	}
	server.SetRateLimit(*rateLimit, time.Minute)

	// Forward every match event to spectators
	scheduler.OnEvent(server.BroadcastEvent)

	addr := ":" + *port
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Starting gallery server on http://localhost%s", addr)
		log.Printf("Database: %s", *dbPath)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := scheduler.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Scheduler error: %v", err)
		}
		log.Println("Scheduler finished; still serving history")
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	scheduler.Stop()
	cancel()
	log.Println("Scheduler stopped")

	server.Shutdown()
	log.Println("Spectators disconnected")

	// Graceful HTTP shutdown with 5 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("HTTP server stopped")

	closeStore(st)
	log.Println("Server shutdown complete")
}

func closeStore(st *store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}
}

// printResults renders final standings and category values of a match
func printResults(m *match.Match, results []store.MatchResult) {
	pterm.DefaultSection.Printfln("Match %s", m.ID)

	standings := pterm.TableData{{"Rank", "Seat", "Player", "Cash"}}
	for _, r := range results {
		standings = append(standings, []string{
			fmt.Sprint(r.Rank),
			fmt.Sprint(r.Seat),
			r.Name,
			fmt.Sprint(r.FinalCash),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(standings).Render(); err != nil {
		log.Printf("render standings: %v", err)
	}

	header := []string{"Category"}
	for r := 0; r < m.Config.Rounds; r++ {
		header = append(header, fmt.Sprintf("Round %d", r+1))
	}
	values := pterm.TableData{header}
	for c := 0; c < item.NumCategories; c++ {
		row := []string{item.Category(c).String()}
		for r := 0; r < m.Config.Rounds; r++ {
			row = append(row, fmt.Sprintf("%d (%d sold)", m.Value(item.Category(c), r), m.SoldCount(r, item.Category(c))))
		}
		values = append(values, row)
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(values).Render(); err != nil {
		log.Printf("render values: %v", err)
	}

	if len(results) > 0 {
		pterm.Success.Printfln("%s wins with %d", results[0].Name, results[0].FinalCash)
	}
}
