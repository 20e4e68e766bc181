// Package wsoutput implements a Sink that serves consumed messages to any
// number of connected WebSocket clients over an embedded HTTP server,
// grounded on the teacher's websocket output component but reduced to
// broadcast-only, at-most-once delivery.
package wsoutput

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/xavier-caroff/synapse/block"
	synerrors "github.com/xavier-caroff/synapse/errors"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/registry"
)

const className = "wsoutput"

// Config is the WebSocket sink's per-block configuration document.
type Config struct {
	Address string `json:"address"`
	Path    string `json:"path"`
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Address == "" {
		return synerrors.WrapInvalid(synerrors.ErrInvalidConfig, "wsoutput.Config", "Validate", "address is required")
	}
	return nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Sink broadcasts every consumed message to each currently connected
// WebSocket client. Slow clients are dropped rather than allowed to stall
// the broadcast. It embeds block.SinkBase for the Consumer+Runnable
// queue/worker half of the role (spec's Sink base); Process is its
// worker-thread hook, run on SinkBase's own goroutine rather than the
// dispatcher's.
type Sink struct {
	*block.SinkBase

	name string

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
	server  *http.Server
}

// New is a block.Factory for the wsoutput class.
func New(name string) (block.Block, error) {
	s := &Sink{name: name, clients: make(map[*websocket.Conn]chan []byte)}
	s.SinkBase = block.NewSinkBase(s)
	return s, nil
}

// Register adds the wsoutput class to reg.
func Register(reg *registry.Registry) error {
	reg.Register(block.Descriptor{ClassName: className, New: New})
	return nil
}

// Name implements block.Block.
func (s *Sink) Name() string { return s.name }

// Initialize implements block.Lifecycle.
func (s *Sink) Initialize(rawConfig []byte, mgr block.Manager) error {
	var cfg Config
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return synerrors.WrapInvalid(synerrors.ErrInvalidConfig, "wsoutput.Sink", "Initialize", s.name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = "/ws"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, s.handleConn)
	srv := &http.Server{Addr: cfg.Address, Handler: mux}

	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	go srv.ListenAndServe()
	return nil
}

func (s *Sink) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	outbox := make(chan []byte, 64)
	s.mu.Lock()
	s.clients[conn] = outbox
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for payload := range outbox {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// Process implements block.Processor, called on SinkBase's worker
// goroutine for each queued message in arrival order.
func (s *Sink) Process(msg *message.Message) {
	payload := msg.Bytes()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, outbox := range s.clients {
		select {
		case outbox <- payload:
		default:
			delete(s.clients, conn)
			close(outbox)
			conn.Close()
		}
	}
}

// Shutdown implements block.Lifecycle.
func (s *Sink) Shutdown() {
	s.SinkBase.RequestShutdown()

	s.mu.Lock()
	srv := s.server
	for conn, outbox := range s.clients {
		close(outbox)
		conn.Close()
		delete(s.clients, conn)
	}
	s.mu.Unlock()

	if srv != nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		srv.Shutdown(ctx)
	}
}
