package server

import (
	"context"
	"log"
	"net"
	"testing"
	"time"

	"matchtris/tetris"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestNewSession(t *testing.T) {
	ctx := context.Background()
	client, closer := testServer(ctx)
	defer closer()

	id, err := client.NewSession(ctx, wrapperspb.Int64(7))
	require.NoError(t, err)
	_, err = uuid.Parse(id.GetValue())
	assert.NoError(t, err)
}

func TestGameSession(t *testing.T) {
	t.Run("unknown session", func(t *testing.T) {
		ctx := context.Background()
		client, closer := testServer(ctx)
		defer closer()

		stream, err := client.GameSession(ctx)
		require.NoError(t, err)
		require.NoError(t, stream.Send(EncodeIntent("nope", "")))
		_, err = stream.Recv()
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("attach returns the first frame", func(t *testing.T) {
		ctx := context.Background()
		client, closer := testServer(ctx)
		defer closer()

		id, stream := attach(ctx, t, client)
		f := recv(t, stream, id)
		assert.Len(t, f.Piece, 4)
		assert.Equal(t, 12, f.Grid.Width)
		assert.Equal(t, 28, f.Grid.Height)
		assert.Equal(t, 24, f.Grid.VisibleHeight)
		assert.False(t, f.Blocked)
		assert.NotEmpty(t, f.Ghost)
	})

	t.Run("tick lowers the piece", func(t *testing.T) {
		ctx := context.Background()
		client, closer := testServer(ctx)
		defer closer()

		id, stream := attach(ctx, t, client)
		before := recv(t, stream, id)
		require.NoError(t, stream.Send(EncodeIntent(id, tetris.Tick)))
		after := recv(t, stream, id)

		require.Len(t, after.Piece, len(before.Piece))
		for i := range before.Piece {
			assert.Equal(t, before.Piece[i].Cell.Row-1, after.Piece[i].Cell.Row)
			assert.Equal(t, before.Piece[i].Cell.Col, after.Piece[i].Cell.Col)
			assert.Equal(t, before.Piece[i].Tile, after.Piece[i].Tile)
		}
	})

	t.Run("drop lands the piece", func(t *testing.T) {
		ctx := context.Background()
		client, closer := testServer(ctx)
		defer closer()

		id, stream := attach(ctx, t, client)
		before := recv(t, stream, id)
		require.NoError(t, stream.Send(EncodeIntent(id, tetris.HardDrop)))
		after := recv(t, stream, id)

		var kinds []tetris.EventKind
		committed := 0
		for _, ev := range after.Events {
			kinds = append(kinds, ev.Kind)
			if ev.Kind == tetris.TileCommitted {
				committed++
				assert.NotEqual(t, tetris.None, ev.Tile.Color)
			}
		}
		assert.Equal(t, len(before.Piece), committed)
		assert.Contains(t, kinds, tetris.PieceLanded)
		assert.Contains(t, kinds, tetris.NextPieceRequested)
		assert.NotEqual(t, before.Piece[0].Tile.ID, after.Piece[0].Tile.ID)
	})

	t.Run("unknown intent", func(t *testing.T) {
		ctx := context.Background()
		client, closer := testServer(ctx)
		defer closer()

		id, stream := attach(ctx, t, client)
		recv(t, stream, id)
		require.NoError(t, stream.Send(&structpb.Struct{Fields: map[string]*structpb.Value{
			"session_id": structpb.NewStringValue(id),
			"intent":     structpb.NewStringValue("hold"),
		}}))
		_, err := stream.Recv()
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("second stream is refused", func(t *testing.T) {
		ctx := context.Background()
		client, closer := testServer(ctx)
		defer closer()

		id, stream := attach(ctx, t, client)
		recv(t, stream, id)

		other, err := client.GameSession(ctx)
		require.NoError(t, err)
		require.NoError(t, other.Send(EncodeIntent(id, "")))
		_, err = other.Recv()
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})
}

func TestUnattachedSessionsExpire(t *testing.T) {
	ctx := context.Background()
	srv := New(nil, tetris.DefaultConfig()).(*sessionServer)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return clock }

	idle, err := srv.NewSession(ctx, wrapperspb.Int64(1))
	require.NoError(t, err)
	playing, err := srv.NewSession(ctx, wrapperspb.Int64(2))
	require.NoError(t, err)
	_, err = srv.attach(playing.GetValue())
	require.NoError(t, err)

	clock = clock.Add(AttachTimeout / 2)
	_, err = srv.NewSession(ctx, wrapperspb.Int64(3))
	require.NoError(t, err)
	assert.Len(t, srv.sessions, 3, "nothing expires before the timeout")

	clock = clock.Add(AttachTimeout + time.Second)
	_, err = srv.attach(idle.GetValue())
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Len(t, srv.sessions, 1)
	assert.Contains(t, srv.sessions, playing.GetValue(), "attached sessions live until their stream ends")
}

func attach(ctx context.Context, t *testing.T, client SessionServiceClient) (string, grpc.BidiStreamingClient[structpb.Struct, structpb.Struct]) {
	t.Helper()
	id, err := client.NewSession(ctx, wrapperspb.Int64(1))
	require.NoError(t, err)
	stream, err := client.GameSession(ctx)
	require.NoError(t, err)
	require.NoError(t, stream.Send(EncodeIntent(id.GetValue(), "")))
	return id.GetValue(), stream
}

func recv(t *testing.T, stream grpc.BidiStreamingClient[structpb.Struct, structpb.Struct], id string) tetris.Frame {
	t.Helper()
	msg, err := stream.Recv()
	require.NoError(t, err)
	gotID, f := DecodeFrame(msg)
	require.Equal(t, id, gotID)
	return f
}

func testServer(ctx context.Context) (SessionServiceClient, func()) {
	buffer := 101024 * 1024
	lis := bufconn.Listen(buffer)

	s := grpc.NewServer()
	RegisterSessionServiceServer(s, New(nil, tetris.DefaultConfig()))
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Printf("unable to serve: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Printf("error connecting to server: %v", err)
	}

	closer := func() {
		if err := lis.Close(); err != nil {
			log.Printf("error closing listener: %v", err)
		}
		s.Stop()
	}

	return NewSessionServiceClient(conn), closer
}
