package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"

	"matchtris/server"
	"matchtris/tetris"

	"google.golang.org/grpc"
)

func main() {
	var (
		port   = flag.Int("port", 9000, "listening port")
		pregen = flag.Int("pregen", 0, "bottom rows filled with tiles before the first piece of every session")
		flood  = flag.Bool("flood", false, "match connected regions instead of straight runs")
		debug  = flag.Bool("debug", false, "log at debug level")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg := tetris.DefaultConfig()
	cfg.PregenRows = *pregen
	if *flood {
		cfg.Match = tetris.FloodFill
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer lis.Close()
	s := grpc.NewServer()
	defer s.Stop()
	server.RegisterSessionServiceServer(s, server.New(logger, cfg))

	logger.Info("starting server", slog.String("addr", lis.Addr().String()))
	if err := s.Serve(lis); err != nil {
		logger.Error("failed to serve", slog.String("error", err.Error()))
	}
}
