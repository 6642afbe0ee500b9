// Package client is the terminal front end. It turns key presses into
// intents for a local runner or a server session and draws every frame.
package client

import (
	"fmt"
	"log/slog"

	"matchtris/tetris"

	"github.com/eiannone/keyboard"
)

type Client struct {
	game   game
	render renderer
	logger *slog.Logger
	kbCh   <-chan keyboard.KeyEvent
}

type Options struct {
	NoGhost bool
	// Address of a session server. Empty plays locally.
	Address string
	Seed    int64
	Config  tetris.Config
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	r, err := newRender(l, o.NoGhost)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}

	var g game
	if o.Address != "" {
		rg, err := newRemoteGame(o.Address, o.Seed, l)
		if err != nil {
			return nil, fmt.Errorf("failed to join server: %w", err)
		}
		g = rg
	} else {
		cfg := o.Config
		cfg.Seed = uint64(o.Seed)
		cfg.Logger = l
		g = tetris.NewRunner(cfg)
	}

	kb, err := keyboard.GetKeys(20)
	if err != nil {
		g.Stop()
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	return &Client{
		game:   g,
		render: r,
		logger: l,
		kbCh:   kb,
	}, nil
}

// Start plays until the player quits or the game ends.
func (c *Client) Start() {
	stop := make(chan struct{})
	ended := make(chan struct{})
	c.render.open()
	defer c.render.close()
	c.game.Start()
	go c.listenGame(stop, ended)
	c.listenKB(ended)
	close(stop)
	c.game.Stop()
}

// Close releases the keyboard.
func (c *Client) Close() {
	if err := keyboard.Close(); err != nil {
		c.logger.Error("unable to close keyboard", slog.String("error", err.Error()))
	}
}

func (c *Client) listenGame(stop <-chan struct{}, ended chan<- struct{}) {
	defer close(ended)
	for {
		select {
		case f, ok := <-c.game.GetUpdate():
			if !ok {
				c.logger.Debug("game update channel closed")
				return
			}
			c.render.frame(f)
		case <-stop:
			return
		}
	}
}

func (c *Client) listenKB(ended <-chan struct{}) {
	for {
		select {
		case event, ok := <-c.kbCh:
			if !ok {
				c.logger.Error("Keyboard events channel closed unexpectedly")
				return
			}
			if event.Err != nil {
				c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
				return
			}
			if event.Key == keyboard.KeyCtrlC || event.Key == keyboard.KeyEsc || event.Rune == 'q' {
				return
			}
			if i, ok := intentOf(event); ok {
				c.game.Action(i)
			}
		case <-ended:
			return
		}
	}
}

func intentOf(event keyboard.KeyEvent) (tetris.Intent, bool) {
	switch {
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.Tick, true
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, true
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, true
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'w':
		return tetris.Rotate, true
	case event.Key == keyboard.KeySpace:
		return tetris.HardDrop, true
	}
	return "", false
}
