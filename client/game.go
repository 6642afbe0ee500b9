package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"matchtris/server"
	"matchtris/tetris"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// game is what the client drives: the local runner or a server session.
type game interface {
	Start()
	GetUpdate() <-chan tetris.Frame
	Action(tetris.Intent)
	Stop()
}

// remoteGame plays a server session. Ticks come from a local ticker and
// travel as intents like any key press.
type remoteGame struct {
	conn   *grpc.ClientConn
	stream grpc.BidiStreamingClient[structpb.Struct, structpb.Struct]
	cancel context.CancelFunc
	id     string
	logger *slog.Logger

	updateCh chan tetris.Frame
	doneCh   chan struct{}
	ticker   tetris.Ticker
	interval time.Duration
	stopOnce sync.Once
	sendMu   sync.Mutex
}

func newRemoteGame(addr string, seed int64, l *slog.Logger) (*remoteGame, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("unable to create gRPC client: %w", err)
	}
	g, err := dialSession(conn, seed, l)
	if err != nil {
		conn.Close() //nolint: errcheck
		return nil, err
	}
	g.conn = conn
	return g, nil
}

// dialSession creates a session on cc and attaches a stream to it.
func dialSession(cc grpc.ClientConnInterface, seed int64, l *slog.Logger) (*remoteGame, error) {
	client := server.NewSessionServiceClient(cc)
	ctx, cancel := context.WithCancel(context.Background())

	id, err := client.NewSession(ctx, wrapperspb.Int64(seed))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to create session: %w", err)
	}
	stream, err := client.GameSession(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to open GameSession stream: %w", err)
	}
	return &remoteGame{
		stream:   stream,
		cancel:   cancel,
		id:       id.GetValue(),
		logger:   l.With(slog.String("session", id.GetValue())),
		updateCh: make(chan tetris.Frame),
		doneCh:   make(chan struct{}),
		ticker:   tetris.NewTicker(tetris.DefaultInterval),
		interval: tetris.DefaultInterval,
	}, nil
}

func (g *remoteGame) Start() {
	go g.receive()
	go g.tick()
	g.send("")
}

func (g *remoteGame) GetUpdate() <-chan tetris.Frame { return g.updateCh }

func (g *remoteGame) Action(i tetris.Intent) {
	g.send(i)
	if i == tetris.HardDrop {
		g.ticker.Reset(g.interval)
	}
}

func (g *remoteGame) Stop() {
	g.stopOnce.Do(func() {
		g.ticker.Stop()
		close(g.doneCh)
		g.sendMu.Lock()
		if err := g.stream.CloseSend(); err != nil {
			g.logger.Debug("unable to close stream", slog.String("error", err.Error()))
		}
		g.sendMu.Unlock()
		g.cancel()
		if g.conn != nil {
			if err := g.conn.Close(); err != nil {
				g.logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
			}
		}
	})
}

func (g *remoteGame) send(i tetris.Intent) {
	g.sendMu.Lock()
	defer g.sendMu.Unlock()
	select {
	case <-g.doneCh:
		return
	default:
	}
	if err := g.stream.Send(server.EncodeIntent(g.id, i)); err != nil {
		g.logger.Debug("send() unable to send intent", slog.String("intent", string(i)), slog.String("error", err.Error()))
	}
}

func (g *remoteGame) tick() {
	g.ticker.Reset(g.interval)
	for {
		select {
		case <-g.ticker.C():
			g.send(tetris.Tick)
		case <-g.doneCh:
			return
		}
	}
}

// receive forwards frames until the stream ends, then closes the update
// channel.
func (g *remoteGame) receive() {
	defer close(g.updateCh)
	for {
		rcv, err := g.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				g.logger.Debug("stream.Recv() closed with EOF")
				return
			}
			st, ok := status.FromError(err)
			if ok && st.Code() == codes.Canceled {
				g.logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
			} else {
				g.logger.Error("stream.Recv() unable to receive message", slog.String("error", err.Error()))
			}
			return
		}
		_, f := server.DecodeFrame(rcv)
		select {
		case g.updateCh <- f:
		case <-g.doneCh:
			return
		}
	}
}
