package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/PizzaHomicide/vidctl/internal/log"
)

var (
	// ErrIPCTimeout is returned when mpv does not answer a request in time
	ErrIPCTimeout = errors.New("mpv ipc request timed out")
	// ErrNotConnected is returned for requests after the IPC connection closed
	ErrNotConnected = errors.New("not connected to mpv")
)

// MPVMessage is one line received from mpv: either an event or the reply to a request
type MPVMessage struct {
	Event     string          `json:"event,omitempty"`
	Name      string          `json:"name,omitempty"`
	ID        int             `json:"id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	// Set on end-file events
	Reason    string `json:"reason,omitempty"`
	FileError string `json:"file_error,omitempty"`
}

// MPVIPCClient speaks mpv's JSON IPC protocol over a connected socket or pipe.  Requests carry a request_id and wait
// for the matching reply; everything else is delivered on Events.
type MPVIPCClient struct {
	conn    net.Conn
	timeout time.Duration
	events  chan MPVMessage

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int
	pending map[int]chan MPVMessage

	stop      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewMPVIPCClient wraps conn and starts reading from it.  timeout bounds every request.
func NewMPVIPCClient(conn net.Conn, timeout time.Duration) *MPVIPCClient {
	c := &MPVIPCClient{
		conn:    conn,
		timeout: timeout,
		events:  make(chan MPVMessage, 100),
		pending: make(map[int]chan MPVMessage),
		stop:    make(chan struct{}),
		closed:  make(chan struct{}),
	}
	go c.readMessages()
	return c
}

// WaitForConnection dials the IPC endpoint until mpv has created it, the attempts run out or ctx is done
func WaitForConnection(ctx context.Context, socketPath string, maxAttempts int, retryDelay time.Duration) (net.Conn, error) {
	log.Debug("Waiting for MPV to create socket", "socket_path", socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if socketReady(socketPath) {
			conn, err := dialIPC(ctx, socketPath)
			if err == nil {
				log.Info("Successfully connected to MPV", "attempt", attempt)
				return conn, nil
			}
			log.Debug("Failed to connect to MPV", "attempt", attempt, "error", err)
		} else {
			log.Debug("MPV socket does not exist yet", "attempt", attempt, "path", socketPath)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to MPV after %d attempts", maxAttempts)
}

// Events returns the channel of unsolicited mpv messages.  It is closed when the connection ends.
func (c *MPVIPCClient) Events() <-chan MPVMessage {
	return c.events
}

// Closed is closed once the connection has ended
func (c *MPVIPCClient) Closed() <-chan struct{} {
	return c.closed
}

// Request sends a command and waits for mpv's reply, returning the reply data
func (c *MPVIPCClient) Request(ctx context.Context, command ...any) (json.RawMessage, error) {
	if len(command) == 0 {
		return nil, errors.New("empty mpv command")
	}

	reply := make(chan MPVMessage, 1)
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.pending[id] = reply
	c.mu.Unlock()
	defer c.forget(id)

	if err := c.write(id, command); err != nil {
		return nil, err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case msg := <-reply:
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", command[0], msg.Error)
		}
		return msg.Data, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: %v", ErrIPCTimeout, command[0])
	case <-c.closed:
		return nil, ErrNotConnected
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ObserveProperty asks mpv to send property-change events for name, tagged with id
func (c *MPVIPCClient) ObserveProperty(ctx context.Context, id int, name string) error {
	_, err := c.Request(ctx, "observe_property", id, name)
	return err
}

// SetProperty sets an mpv property
func (c *MPVIPCClient) SetProperty(ctx context.Context, name string, value any) error {
	_, err := c.Request(ctx, "set_property", name, value)
	return err
}

// Close closes the connection.  Pending requests fail with ErrNotConnected.
func (c *MPVIPCClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stop)
		err = c.conn.Close()
	})
	return err
}

func (c *MPVIPCClient) write(id int, command []any) error {
	data, err := json.Marshal(struct {
		Command   []any `json:"command"`
		RequestID int   `json:"request_id"`
	}{Command: command, RequestID: id})
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	log.Trace("Sending MPV command", "data", string(data))

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

func (c *MPVIPCClient) forget(id int) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// readMessages routes replies to their waiting request and everything else to the events channel
func (c *MPVIPCClient) readMessages() {
	defer func() {
		close(c.closed)
		close(c.events)
		log.Debug("MPV event reader stopped")
	}()

	scanner := bufio.NewScanner(c.conn)
	// track-list replies grow with the number of variants
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		log.Trace("Raw MPV message", "data", string(line))

		var msg MPVMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			log.Error("Failed to unmarshal MPV message", "error", err)
			continue
		}

		if msg.Event == "" {
			c.deliverReply(msg)
			continue
		}

		select {
		case c.events <- msg:
		case <-c.stop:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case <-c.stop:
		default:
			log.Error("Error reading from MPV socket", "error", err)
		}
	}
}

func (c *MPVIPCClient) deliverReply(msg MPVMessage) {
	c.mu.Lock()
	reply, ok := c.pending[msg.RequestID]
	c.mu.Unlock()
	if !ok {
		log.Debug("Discarding MPV reply with no waiting request", "request_id", msg.RequestID)
		return
	}
	reply <- msg
}
