package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/kplay-cli/kplay/log"
	"golang.org/x/time/rate"
)

// malformed throttles warnings about undecodable IPC lines.
var malformed = rate.Sometimes{First: 3, Interval: time.Minute}

// EventCallback receives mpv notifications. For property changes name is the
// property and data its new value; for other events name is the event type and
// data the whole decoded message.
type EventCallback func(name string, data interface{})

// observed lists the properties the engine mirrors.
var observed = []string{
	"time-pos",
	"duration",
	"demuxer-cache-time",
	"pause",
	"paused-for-cache",
	"seeking",
	"eof-reached",
	"idle-active",
	"playlist-pos",
	"playlist-count",
	"seekable",
	"dwidth",
	"dheight",
	"speed",
	"volume",
}

// EventListener streams mpv events from one persistent connection.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		stopCh:     make(chan struct{}),
	}
}

// Start connects, registers the property observers and starts the read loop.
// Observers are bound to the connection they were sent on.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{Command: []interface{}{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.For("mpv").WithField("socket", el.socketPath).Infof("event listener started, observing %d properties", len(observed))
	return nil
}

// Stop terminates the event listener.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

// readLoop reads newline-delimited JSON messages until stopped or the connection fails.
func (el *EventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	reader := bufio.NewReader(el.conn)
	var remainder []byte
	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		line, err := reader.ReadBytes('\n')
		if err == nil {
			el.processEvent(append(remainder, line...))
			remainder = nil
			continue
		}

		if errors.Is(err, os.ErrDeadlineExceeded) {
			// a timeout is normal; keep whatever partial line arrived
			remainder = append(remainder, line...)
			continue
		}
		select {
		case <-el.stopCh:
		default:
			log.For("mpv").Warnf("event listener read error: %v", err)
		}
		return
	}
}

// processEvent parses and dispatches a single mpv message. Command replies are ignored.
func (el *EventListener) processEvent(line []byte) {
	var event map[string]interface{}
	if err := json.Unmarshal(line, &event); err != nil {
		malformed.Do(func() {
			log.For("mpv").Warnf("skip malformed ipc line %q: %v", line, err)
		})
		return
	}

	eventType, ok := event["event"].(string)
	if !ok || el.callback == nil {
		return
	}

	switch eventType {
	case "property-change":
		if name, _ := event["name"].(string); name != "" {
			el.callback(name, event["data"])
		}
	default:
		el.callback(eventType, event)
	}
}
