package ipc

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"strings"

	"github.com/calrichards/frisk/internal/paths"
)

// Listener accepts reload messages on the unix socket and fans them
// into a bounded channel the main loop drains between redraws.
type Listener struct {
	path     string
	ln       net.Listener
	messages chan ReloadMessage
}

// NewListener creates a listener on the default socket path.
func NewListener() *Listener {
	return NewListenerAt(paths.SocketFile())
}

// NewListenerAt creates a listener on an explicit socket path.
func NewListenerAt(path string) *Listener {
	return &Listener{
		path:     path,
		messages: make(chan ReloadMessage, 16),
	}
}

// Start binds the socket and begins accepting. A leftover socket from
// a crashed primary is removed first; CheckSingleInstance already
// proved no live primary is using it.
func (l *Listener) Start() error {
	if _, err := os.Stat(l.path); err == nil {
		os.Remove(l.path)
	}

	ln, err := net.Listen("unix", l.path)
	if err != nil {
		return err
	}
	// Same-UID enforcement happens per connection; the mode keeps
	// other users from even connecting.
	os.Chmod(l.path, 0o600)
	l.ln = ln

	go l.acceptLoop()
	log.Info("ipc_listening", "path", l.path)
	return nil
}

// Messages returns the reload channel. Closed when the listener stops.
func (l *Listener) Messages() <-chan ReloadMessage {
	return l.messages
}

// Stop closes the socket and removes it from disk.
func (l *Listener) Stop() {
	if l.ln != nil {
		l.ln.Close()
	}
	os.Remove(l.path)
}

func (l *Listener) acceptLoop() {
	defer close(l.messages)
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			log.Warn("ipc_accept_error", "error", err)
			continue
		}
		go l.handleConn(conn)
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	defer conn.Close()

	ok, err := samePeerUID(conn)
	if err != nil || !ok {
		log.Warn("ipc_peer_rejected", "error", err)
		return
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var msg ReloadMessage
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			log.Warn("ipc_bad_message", "error", err)
			continue
		}
		select {
		case l.messages <- msg:
			log.Debug("ipc_message_queued", "targeted", msg.Targeted())
		default:
			// Sixteen undrained reloads means the main loop is wedged;
			// another queued one would not help.
			log.Warn("ipc_queue_full")
		}
	}
}
