package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"matchtris/client"
	"matchtris/tetris"
)

func main() {
	var (
		addr    = flag.String("addr", "", "session server address, empty plays locally")
		seed    = flag.Int64("seed", 0, "random seed, 0 picks one from the clock")
		noGhost = flag.Bool("noghost", false, "hide the landing preview of the falling piece")
		pregen  = flag.Int("pregen", 0, "bottom rows filled with tiles before the first piece")
		flood   = flag.Bool("flood", false, "match connected regions instead of straight runs")
		logFile = flag.String("log", "", "write debug logs to this file")
	)
	flag.Parse()

	logger, closeLog, err := newLogger(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	cfg := tetris.DefaultConfig()
	cfg.PregenRows = *pregen
	if *flood {
		cfg.Match = tetris.FloodFill
	}

	c, err := client.New(logger, &client.Options{
		NoGhost: *noGhost,
		Address: *addr,
		Seed:    *seed,
		Config:  cfg,
	})
	if err != nil {
		logger.Error("unable to start client", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, err)
		closeLog()
		os.Exit(1)
	}
	defer c.Close()
	c.Start()
}

// newLogger keeps the terminal clean: logs go to path or nowhere.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	l := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return l, func() { f.Close() }, nil //nolint: errcheck
}
