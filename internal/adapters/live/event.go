package live

import (
	"bytes"
	"encoding/json"
)

// EventLocationUpdate is the push event carrying a new campaign point.
const EventLocationUpdate = "location_update"

// socketIOEvent prefixes a socket.io event packet inside an engine.io message.
var socketIOEvent = []byte("42")

var (
	engineConnect = []byte("40")
	enginePong    = []byte("3")
)

// engineReply returns the frame an engine.io v4 client owes the server for
// frame: "40" joins the default namespace after the open packet and "3"
// answers each ping. Frames needing no answer return nil.
func engineReply(frame []byte) []byte {
	switch {
	case len(frame) > 1 && frame[0] == '0' && frame[1] == '{':
		return engineConnect
	case len(frame) == 1 && frame[0] == '2':
		return enginePong
	}
	return nil
}

// engineClosed reports an engine.io close or a socket.io namespace disconnect.
func engineClosed(frame []byte) bool {
	return string(frame) == "1" || bytes.HasPrefix(frame, []byte("41"))
}

// DecodeEvent extracts the event name and payload from a push frame. It
// understands {"type","payload"}, {"event","data"} and socket.io 42["name",{..}] frames.
func DecodeEvent(frame []byte) (string, json.RawMessage, bool) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return "", nil, false
	}

	if bytes.HasPrefix(frame, socketIOEvent) {
		var parts []json.RawMessage
		if err := json.Unmarshal(frame[len(socketIOEvent):], &parts); err != nil || len(parts) < 2 {
			return "", nil, false
		}
		var name string
		if err := json.Unmarshal(parts[0], &name); err != nil {
			return "", nil, false
		}
		return name, parts[1], true
	}

	if frame[0] != '{' {
		return "", nil, false
	}

	var env struct {
		Type    string          `json:"type"`
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", nil, false
	}

	name := env.Type
	if name == "" {
		name = env.Event
	}
	payload := env.Payload
	if len(payload) == 0 {
		payload = env.Data
	}
	if name == "" || len(payload) == 0 {
		return "", nil, false
	}
	return name, payload, true
}
