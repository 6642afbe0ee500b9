package client

import (
	"context"
	"log"
	"log/slog"
	"net"
	"testing"
	"time"

	"matchtris/server"
	"matchtris/tetris"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func TestRemoteGame(t *testing.T) {
	conn, closer := testConn(t)
	defer closer()

	g, err := dialSession(conn, 3, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	g.Start()

	first := nextFrame(t, g)
	require.NotEmpty(t, first.Piece)
	assert.Equal(t, 24, first.Grid.VisibleHeight)

	g.Action(tetris.Tick)
	second := nextFrame(t, g)
	require.Len(t, second.Piece, len(first.Piece))
	assert.Equal(t, first.Piece[0].Cell.Row-1, second.Piece[0].Cell.Row)

	g.Action(tetris.HardDrop)
	dropped := nextFrame(t, g)
	var landed bool
	for _, ev := range dropped.Events {
		landed = landed || ev.Kind == tetris.PieceLanded
	}
	assert.True(t, landed)

	g.Stop()
	g.Stop()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-g.GetUpdate():
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func nextFrame(t *testing.T, g *remoteGame) tetris.Frame {
	t.Helper()
	select {
	case f, ok := <-g.GetUpdate():
		require.True(t, ok, "update channel closed")
		return f
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for a frame")
	}
	return tetris.Frame{}
}

func testConn(t *testing.T) (*grpc.ClientConn, func()) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	server.RegisterSessionServiceServer(s, server.New(nil, tetris.DefaultConfig()))
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Printf("unable to serve: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	return conn, func() {
		conn.Close() //nolint: errcheck
		s.Stop()
	}
}
