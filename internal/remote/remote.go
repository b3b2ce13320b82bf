package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"product-viewer/internal/commands"
	"product-viewer/internal/shell"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 2 * time.Second

// StatusSource reports the viewer's current status.
type StatusSource interface {
	Status() shell.Status
}

// Reply answers one line sent by a client.
type Reply struct {
	Line      string `json:"line"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Delivered int    `json:"delivered,omitempty"`
}

// Message is what clients receive: either a status snapshot or a reply to their own line.
type Message struct {
	Type   string        `json:"type"`
	Status *shell.Status `json:"status,omitempty"`
	Reply  *Reply        `json:"reply,omitempty"`
}

// Options configure a Server.
type Options struct {
	Addr string
	// StatusInterval is how often status is pushed to every client. Zero disables the push;
	// clients still get status on connect and after every command.
	StatusInterval time.Duration
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(m)
}

// Server lets other processes drive the viewer over a WebSocket. Clients send text lines:
// "reset-camera" emits the reset command, and "cmd <name> [args]" runs a console command.
type Server struct {
	opts     Options
	status   StatusSource
	ch       commands.Channel
	registry *commands.Registry
	log      logrus.FieldLogger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// New returns a server. registry may be nil, in which case "cmd" lines are rejected.
func New(opts Options, status StatusSource, ch commands.Channel, registry *commands.Registry, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		opts:     opts,
		status:   status,
		ch:       ch,
		registry: registry,
		log:      log.WithField("component", "remote"),
		// The zero Upgrader accepts requests without an Origin header and same-host origins
		// only, so a web page cannot drive the viewer from the user's browser.
		upgrader: websocket.Upgrader{},
		clients: make(map[*client]struct{}),
	}
}

// Handler serves the WebSocket at /ws and a JSON status snapshot at /status.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.opts.Addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		s.closeClients()
	}()
	if s.opts.StatusInterval > 0 {
		go s.pushStatus(ctx)
	}
	s.log.WithField("addr", s.opts.Addr).Info("remote control listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("remote control: %w", err)
	}
	return nil
}

func (s *Server) pushStatus(ctx context.Context) {
	t := time.NewTicker(s.opts.StatusInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Broadcast()
		}
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcast sends the current status to every client. Clients that cannot be written to are dropped.
func (s *Server) Broadcast() {
	st := s.status.Status()
	m := Message{Type: "status", Status: &st}

	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.send(m); err != nil {
			s.log.WithError(err).Debug("dropping remote client")
			s.remove(c)
		}
	}
}

// Handle runs one line and returns the reply.
func (s *Server) Handle(line string) Reply {
	line = strings.TrimSpace(line)
	r := Reply{Line: line}
	switch {
	case line == commands.ResetCamera:
		r.Delivered = s.ch.Emit(commands.ResetCamera)
		r.OK = true
	case strings.HasPrefix(line, "cmd "):
		if s.registry == nil {
			r.Error = "console commands are disabled"
			break
		}
		args, _ := commands.Parse(line)
		if err := s.registry.Execute(args); err != nil {
			r.Error = err.Error()
			break
		}
		r.OK = true
	default:
		r.Error = fmt.Sprintf("unknown message %q", line)
	}
	s.log.WithFields(logrus.Fields{"line": line, "ok": r.OK}).Debug("remote command")
	return r
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.log.WithField("remote", r.RemoteAddr).Info("remote client connected")
	defer func() {
		s.remove(c)
		s.log.WithField("remote", r.RemoteAddr).Info("remote client disconnected")
	}()

	st := s.status.Status()
	if err := c.send(Message{Type: "status", Status: &st}); err != nil {
		return
	}
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		reply := s.Handle(string(data))
		if err := c.send(Message{Type: "reply", Reply: &reply}); err != nil {
			return
		}
		s.Broadcast()
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status.Status())
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	all := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()
	for c := range all {
		c.conn.Close()
	}
}
