package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/calrichards/frisk/internal/paths"
	"github.com/calrichards/frisk/internal/platform"
)

// Coordinator owns the lock file protocol. Exactly one process per
// user holds the lock; everyone else forwards their request and exits.
// On platforms without working unix sockets it degrades to lock-file
// only: a live primary means "already running", with no forwarding.
type Coordinator struct {
	lockPath   string
	socketPath string
	owned      bool
	socketless bool
}

// NewCoordinator creates a coordinator over the default runtime paths.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		lockPath:   paths.LockFile(),
		socketPath: paths.SocketFile(),
		socketless: !platform.SupportsUnixSockets(),
	}
}

// CheckSingleInstance decides whether this process becomes primary.
// If a live primary exists, msg is forwarded to it and true is
// returned: the caller should exit. A stale lock (dead PID, or a live
// PID with no reachable socket) is removed and this process takes
// over, writing its own PID.
func (c *Coordinator) CheckSingleInstance(msg ReloadMessage) (bool, error) {
	if pid, ok := c.readLock(); ok {
		if processAlive(pid) {
			if c.socketless {
				// No socket to forward over; never steal a live
				// primary's lock.
				return false, fmt.Errorf("frisk already running (pid %d)", pid)
			}
			if err := c.Send(msg); err == nil {
				log.Info("reload_forwarded", "pid", pid)
				return true, nil
			}
			// Lock holder is alive but not listening; treat as stale.
			log.Warn("primary_unreachable", "pid", pid)
		}
		os.Remove(c.lockPath)
	}

	if err := os.WriteFile(c.lockPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return false, fmt.Errorf("write lock file: %w", err)
	}
	c.owned = true
	log.Debug("lock_acquired", "path", c.lockPath)
	return false, nil
}

// Send delivers a reload message to the primary's socket.
func (c *Coordinator) Send(msg ReloadMessage) error {
	if _, err := os.Stat(c.socketPath); err != nil {
		return fmt.Errorf("no socket at %s: %w", c.socketPath, err)
	}
	conn, err := net.DialTimeout("unix", c.socketPath, time.Second)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("send reload: %w", err)
	}
	return nil
}

// Cleanup removes the lock file if this process owns it.
func (c *Coordinator) Cleanup() {
	if c.owned {
		os.Remove(c.lockPath)
		c.owned = false
	}
}

func (c *Coordinator) readLock() (int, bool) {
	data, err := os.ReadFile(c.lockPath)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// processAlive probes a PID with signal 0. On unix FindProcess always
// succeeds; only the signal tells us anything.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
