package player

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeMPV answers every command on a unix socket, preceding each reply with an
// unrelated broadcast event.
func fakeMPV(t *testing.T, reply func(command interface{}) ipcResponse) string {
	path := filepath.Join(t.TempDir(), "mpv.sock")
	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					var cmd ipcCommand
					if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
						return
					}
					resp := reply(cmd.Command)
					resp.RequestID = cmd.RequestID
					event, _ := json.Marshal(map[string]string{"event": "playback-restart"})
					payload, _ := json.Marshal(resp)
					_, _ = conn.Write(append(append(event, '\n'), append(payload, '\n')...))
				}
			}(conn)
		}
	}()

	return path
}

func TestDoSendCommand(t *testing.T) {
	Convey("Given an mpv socket", t, func() {
		var (
			mu       sync.Mutex
			received []interface{}
		)
		path := fakeMPV(t, func(command interface{}) ipcResponse {
			mu.Lock()
			received = append(received, command)
			mu.Unlock()
			if args, ok := command.([]interface{}); ok && args[0] == "get_property" {
				if args[1] == "missing" {
					return ipcResponse{Error: "property unavailable"}
				}
				return ipcResponse{Error: "success", Data: 12.5}
			}
			return ipcResponse{Error: "success"}
		})

		Convey("Replies are matched past broadcast events", func() {
			data, err := doSendCommand(path, []interface{}{"get_property", "time-pos"})
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 12.5)
		})

		Convey("mpv errors are returned", func() {
			_, err := doSendCommand(path, []interface{}{"get_property", "missing"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "property unavailable")
		})

		Convey("Named-argument commands are sent as objects", func() {
			_, err := doSendCommand(path, map[string]interface{}{"name": "loadfile", "url": "/a.mp4"})
			So(err, ShouldBeNil)
			mu.Lock()
			defer mu.Unlock()
			So(received[len(received)-1], ShouldResemble, map[string]interface{}{"name": "loadfile", "url": "/a.mp4"})
		})
	})

	Convey("A missing socket fails to connect", t, func() {
		_, err := doSendCommand(filepath.Join(t.TempDir(), "none.sock"), []interface{}{"quit"})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "connect")
	})
}
