package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/ripple-realms/internal/config"
	"github.com/tatianab/ripple-realms/internal/logging"
	"github.com/tatianab/ripple-realms/internal/services"
	"github.com/tatianab/ripple-realms/internal/tui"
)

func main() {
	logFile := flag.String("log", "ripple.log", "file to write logs to while the UI is running")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	f, err := tea.LogToFile(*logFile, "ripple")
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	level, _ := cfg.LogLevel()
	log := logging.Setup(f, level, cfg.Log.Format)

	svc, err := services.New(cfg, log)
	if err != nil {
		fmt.Printf("Error creating services: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	if err := tui.Run(svc); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
