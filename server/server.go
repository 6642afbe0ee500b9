// Package server hosts engine sessions over gRPC. Every session owns one
// engine; the client drives it with intents and gets a frame back for each.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"matchtris/tetris"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// AttachTimeout is how long a new session waits for its stream before it
// is dropped.
const AttachTimeout = time.Minute

type session struct {
	engine   *tetris.Engine
	events   []tetris.Event
	created  time.Time
	attached bool
	mu       sync.Mutex
}

func (s *session) apply(i tetris.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.ApplyIntent(i); err != nil && !errors.Is(err, tetris.ErrNoPiece) {
		return err
	}
	return nil
}

func (s *session) frame() tetris.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.engine.Frame()
	f.Events, s.events = s.events, nil
	return f
}

type sessionServer struct {
	logger   *slog.Logger
	cfg      tetris.Config
	sessions map[string]*session
	now      func() time.Time
	mu       sync.Mutex
}

// New returns the session service. cfg is the template of every session
// engine, its Seed is replaced by the one of the request.
func New(logger *slog.Logger, cfg tetris.Config) SessionServiceServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &sessionServer{
		logger:   logger,
		cfg:      cfg,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (s *sessionServer) NewSession(_ context.Context, seed *wrapperspb.Int64Value) (*wrapperspb.StringValue, error) {
	cfg := s.cfg
	cfg.Seed = uint64(seed.GetValue())
	id := uuid.New().String()
	cfg.Logger = s.logger.With(slog.String("session", id))

	sess := &session{engine: tetris.New(cfg), created: s.now()}
	sess.engine.Subscribe(func(ev tetris.Event) { sess.events = append(sess.events, ev) })
	if err := sess.engine.Start(); err != nil {
		s.logger.Warn("unable to spawn first piece", slog.String("session", id), slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.prune(sess.created)
	s.sessions[id] = sess
	s.mu.Unlock()
	s.logger.Info("session created", slog.String("session", id), slog.Int64("seed", seed.GetValue()))
	return wrapperspb.String(id), nil
}

func (s *sessionServer) GameSession(stream grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]) error {
	var (
		id   string
		sess *session
	)
	defer func() {
		if sess != nil {
			s.close(id)
		}
	}()

	for {
		rcv, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to receive GameSession message: %w", err)
		}

		rcvID, rawIntent := DecodeIntent(rcv)
		if sess == nil {
			if sess, err = s.attach(rcvID); err != nil {
				return err
			}
			id = rcvID
		}

		if rawIntent != "" {
			intent, err := tetris.ParseIntent(rawIntent)
			if err != nil {
				return status.Error(codes.InvalidArgument, err.Error())
			}
			if err := sess.apply(intent); err != nil {
				return status.Error(codes.Internal, err.Error())
			}
		}

		msg, err := EncodeFrame(id, sess.frame())
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}
		if err := stream.Send(msg); err != nil {
			return fmt.Errorf("failed to send GameSession message: %w", err)
		}
	}
}

// prune drops the sessions that were never attached within AttachTimeout.
// Callers hold s.mu.
func (s *sessionServer) prune(now time.Time) {
	for id, sess := range s.sessions {
		if !sess.attached && now.Sub(sess.created) > AttachTimeout {
			delete(s.sessions, id)
			s.logger.Info("session expired", slog.String("session", id))
		}
	}
}

// attach binds a stream to the session. A session accepts a single
// controlling stream.
func (s *sessionServer) attach(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(s.now())
	sess, ok := s.sessions[id]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "session %q not found", id)
	}
	if sess.attached {
		return nil, status.Errorf(codes.FailedPrecondition, "session %q already attached", id)
	}
	sess.attached = true
	return sess, nil
}

// close drops the session once its stream ends.
func (s *sessionServer) close(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.logger.Info("session closed", slog.String("session", id))
}
