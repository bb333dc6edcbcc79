package main

import (
	"os"
	"os/signal"
	"strings"

	"github.com/habedi/escola/cmd"
	"github.com/habedi/escola/db"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const debugEnvVar = "DEBUG_ESCOLA"

// main sets up logging from DEBUG_ESCOLA, installs the interrupt handler and runs the CLI.
func main() {
	configureLogLevelFromEnv()

	stopChan := setupInterruptListener()
	go handleInterrupt(stopChan, func(msg string) { log.Error().Msg(msg) }, os.Exit)

	cmd.Execute()
}

// configureLogLevelFromEnv enables debug logging to stderr unless DEBUG_ESCOLA is empty, "0"
// or "false".
func configureLogLevelFromEnv() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(debugEnvVar))) {
	case "", "0", "false":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func setupInterruptListener() chan os.Signal {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt)
	return stopChan
}

// handleInterrupt waits for an interrupt, releases the session database and exits with status 1.
func handleInterrupt(stopChan chan os.Signal, fatalLog func(string), exit func(int)) {
	<-stopChan
	fatalLog("Interrupt signal received. Exiting...")
	db.Shutdown()
	exit(1)
}
