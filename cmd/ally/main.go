package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"internationally/internal/app"
	"internationally/internal/client"
	"internationally/internal/tui"
)

func main() {
	serverURL := flag.String("server", "", "API server base URL (overrides ALLY_SERVER_URL)")
	flag.Parse()

	godotenv.Load()

	base := *serverURL
	if base == "" {
		base = os.Getenv("ALLY_SERVER_URL")
	}
	if base == "" {
		base = "http://localhost:8080"
	}

	tokens, err := client.NewFileTokenStore()
	if err != nil {
		log.Fatalf("Could not open token store: %v", err)
	}

	api := client.New(base, tokens)
	// Timeout 0: banner clearing is driven by the TUI's own tick so the
	// repaint happens on the program's event loop.
	notify := app.NewNotifier(0)
	session := app.NewSession(api, notify)
	chat := app.NewChatSession(api, session, notify)

	p := tea.NewProgram(tui.New(api, session, chat, notify), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "internationally: %v\n", err)
		os.Exit(1)
	}
}
