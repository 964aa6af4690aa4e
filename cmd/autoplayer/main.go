// Package main - autoplayer
// Load generator and soak tester: simulates concurrent players spamming
// action frames over WebSocket against a running complot-server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Config for the autoplayer run.
type Config struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
}

// Stats tracks throughput and errors across all clients.
type Stats struct {
	FramesSent     int64
	FramesReceived int64
	Rejections     int64
	Errors         int64
}

// actionFrame mirrors the server's incoming wire format.
type actionFrame struct {
	Type     string `json:"type"`
	TargetID string `json:"target_id,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// weightedActions approximates a real play pattern: mostly clicking, with
// occasional purchases, risky theories and the odd ethical act. Target ids
// come from the builtin catalog.
var weightedActions = []struct {
	weight int
	frame  actionFrame
}{
	{60, actionFrame{Type: "MANIPULATE"}},
	{8, actionFrame{Type: "PURCHASE_UPGRADE", TargetID: "persuasive_rhetoric"}},
	{6, actionFrame{Type: "PURCHASE_UPGRADE", TargetID: "whisper_network"}},
	{8, actionFrame{Type: "PROPAGATE_THEORY", TargetID: "divine_omens"}},
	{5, actionFrame{Type: "PERFORM_ETHICAL_ACTION", TargetID: "publish_retraction"}},
	{6, actionFrame{Type: "UNLOCK_ERA", TargetID: "middle_ages"}},
	{3, actionFrame{Type: "SELECT_ERA", TargetID: "middle_ages"}},
	{2, actionFrame{Type: "SWITCH_MODE", Mode: "revelation"}},
	{2, actionFrame{Type: "CLICK_LORE_LINK"}},
}

func pickAction() actionFrame {
	total := 0
	for _, wa := range weightedActions {
		total += wa.weight
	}
	n := rand.IntN(total)
	for _, wa := range weightedActions {
		if n < wa.weight {
			return wa.frame
		}
		n -= wa.weight
	}
	return weightedActions[0].frame
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 20, "Number of concurrent clients")
	interval := flag.Duration("interval", 100*time.Millisecond, "Action interval per client")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	flag.Parse()

	config := Config{
		ServerURL:      *serverURL,
		NumClients:     *numClients,
		ActionInterval: *interval,
		TestDuration:   *duration,
	}

	fmt.Println("=========================================")
	fmt.Println("AUTOPLAYER - Load Generator")
	fmt.Println("=========================================")
	fmt.Printf("Server:   %s\n", config.ServerURL)
	fmt.Printf("Clients:  %d\n", config.NumClients)
	fmt.Printf("Interval: %v\n", config.ActionInterval)
	fmt.Printf("Duration: %v\n", config.TestDuration)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	stats := run(ctx, config)
	printResults(stats, config)
}

func run(ctx context.Context, config Config) *Stats {
	stats := &Stats{}
	var wg sync.WaitGroup

	fmt.Println("\nStarting clients...")
	for i := 0; i < config.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}
	fmt.Printf("All %d clients started\n\n", config.NumClients)

	progress := time.NewTicker(5 * time.Second)
	defer progress.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-progress.C:
				fmt.Printf("Progress: sent=%d recv=%d rejected=%d errors=%d\n",
					atomic.LoadInt64(&stats.FramesSent),
					atomic.LoadInt64(&stats.FramesReceived),
					atomic.LoadInt64(&stats.Rejections),
					atomic.LoadInt64(&stats.Errors))
			}
		}
	}()

	wg.Wait()
	return stats
}

func runClient(ctx context.Context, clientID int, config Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		log.Printf("Client %d: connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	// Receiver counts frames and rejections.
	go func() {
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.FramesReceived, 1)

			var frame struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(message, &frame) == nil && frame.Type == "rejected" {
				atomic.AddInt64(&stats.Rejections, 1)
			}
		}
	}()

	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(pickAction()); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}
			atomic.AddInt64(&stats.FramesSent, 1)
		}
	}
}

func printResults(stats *Stats, config Config) {
	sent := atomic.LoadInt64(&stats.FramesSent)
	recv := atomic.LoadInt64(&stats.FramesReceived)
	rejected := atomic.LoadInt64(&stats.Rejections)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Println("\n=========================================")
	fmt.Println("AUTOPLAYER RESULTS")
	fmt.Println("=========================================")
	fmt.Printf("Frames sent:     %d\n", sent)
	fmt.Printf("Frames received: %d\n", recv)
	fmt.Printf("Rejections:      %d\n", rejected)
	fmt.Printf("Errors:          %d\n", errs)
	fmt.Printf("Throughput:      %.2f frames/sec\n", float64(sent)/config.TestDuration.Seconds())

	fmt.Println("-----------------------------------------")
	switch {
	case errs == 0:
		fmt.Println("PASS: no transport errors")
	case float64(errs)/float64(sent+1) < 0.05:
		fmt.Println("WARN: some errors detected")
	default:
		fmt.Println("FAIL: high error rate")
	}
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"frames_sent":     sent,
		"frames_received": recv,
		"rejections":      rejected,
		"errors":          errs,
		"config": map[string]interface{}{
			"clients":  config.NumClients,
			"interval": config.ActionInterval.String(),
			"duration": config.TestDuration.String(),
		},
	}
	jsonData, _ := json.MarshalIndent(results, "", "  ")
	os.WriteFile("autoplayer_results.json", jsonData, 0644)
	fmt.Println("\nResults saved to autoplayer_results.json")
}
