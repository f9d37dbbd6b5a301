package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"stratus-server/internal/domain"
	"stratus-server/internal/infrastructure/storage"
)

func main() {
	asJSON := flag.Bool("json", false, "Print the replay as JSON")
	eventsOnly := flag.Bool("events", false, "Print events only")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: replaydump [-json] [-events] <file.strp>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	session, err := storage.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(session); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printSession(session, *eventsOnly)
}

func printSession(s *domain.ReplaySession, eventsOnly bool) {
	fmt.Printf("Seed:     %d\n", s.Seed)
	fmt.Printf("Recorded: %s\n", time.Unix(s.Timestamp, 0).Format(time.RFC3339))
	fmt.Printf("Duration: %.2fs\n", s.Duration())
	fmt.Printf("Commands: %d, Events: %d\n", len(s.Commands), len(s.Events))

	if !eventsOnly {
		fmt.Println("\n--- Commands ---")
		for _, c := range s.Commands {
			fmt.Printf("[%8.3f] %-12s token=%s %s\n", c.Time, c.Action, c.Token, c.Payload)
		}
	}

	fmt.Println("\n--- Events ---")
	for _, e := range s.Events {
		line := fmt.Sprintf("[%8.3f] %-18s src=%s", e.Time, e.Type, e.Source)
		if e.Target != "" {
			line += " target=" + e.Target
		}
		if e.Name != "" {
			line += " name=" + e.Name
		}
		if e.State != "" {
			line += " state=" + string(e.State)
		}
		if e.Value != 0 {
			line += fmt.Sprintf(" value=%.2f", e.Value)
		}
		fmt.Println(line)
	}
}
