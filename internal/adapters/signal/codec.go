package signal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

var (
	ErrBadPayload  = errors.New("bad payload")
	ErrUnknownType = errors.New("unknown frame type")
)

// inboundFrame is the JSON envelope clients send. "message" is accepted as
// an alias of "body", and the hyphenated type names of older clients too.
type inboundFrame struct {
	Type    string `json:"type"`
	Name    string `json:"name,omitempty"`
	Token   string `json:"token,omitempty"`
	Body    string `json:"body,omitempty"`
	Message string `json:"message,omitempty"`
	To      string `json:"to,omitempty"`
}

func (f inboundFrame) text() string {
	if f.Body != "" {
		return f.Body
	}
	return f.Message
}

func decodeInbound(data []byte) (inboundFrame, core.InboundEvent, error) {
	var f inboundFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return f, nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	switch f.Type {
	case "join", "new-user-joined":
		return f, core.Join{DisplayName: f.Name}, nil
	case "message", "group-message":
		if f.text() == "" {
			return f, nil, fmt.Errorf("%w: empty message", ErrBadPayload)
		}
		return f, core.BroadcastMessage{Body: f.text()}, nil
	case "private", "private-message":
		if f.To == "" || f.text() == "" {
			return f, nil, fmt.Errorf("%w: private message needs to and body", ErrBadPayload)
		}
		return f, core.PrivateMessage{To: domain.ConnectionID(f.To), Body: f.text()}, nil
	case "leave":
		return f, core.Leave{}, nil
	case "ping":
		return f, core.Ping{}, nil
	case "whoami":
		return f, core.WhoAmI{}, nil
	default:
		return f, nil, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
}

type (
	welcomeFrame struct {
		Type string              `json:"type"`
		ID   domain.ConnectionID `json:"id"`
	}

	userListFrame struct {
		Type  string                  `json:"type"`
		Users domain.PresenceSnapshot `json:"users"`
	}

	receiveFrame struct {
		Type    string              `json:"type"`
		ID      string              `json:"id"`
		Name    string              `json:"name"`
		Message string              `json:"message"`
		From    domain.ConnectionID `json:"from"`
		Private bool                `json:"private,omitempty"`
	}

	userLeftFrame struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}

	undeliveredFrame struct {
		Type string              `json:"type"`
		To   domain.ConnectionID `json:"to"`
	}

	identityFrame struct {
		Type  string              `json:"type"`
		ID    domain.ConnectionID `json:"id"`
		Name  string              `json:"name,omitempty"`
		State string              `json:"state"`
	}

	pongFrame struct {
		Type string `json:"type"`
	}

	errorFrame struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message,omitempty"`
	}
)

func encodeOutbound(ev core.OutboundEvent) ([]byte, error) {
	var v any
	switch e := ev.(type) {
	case core.Welcome:
		v = welcomeFrame{Type: e.Kind(), ID: e.ConnectionID}
	case core.PresenceSnapshot:
		users := e.Participants
		if users == nil {
			users = domain.PresenceSnapshot{}
		}
		v = userListFrame{Type: e.Kind(), Users: users}
	case core.MessageReceived:
		v = receiveFrame{Type: e.Kind(), ID: e.ID, Name: e.SenderName, Message: e.Body, From: e.From, Private: e.Private}
	case core.UserLeft:
		v = userLeftFrame{Type: e.Kind(), Name: e.DisplayName}
	case core.Undelivered:
		v = undeliveredFrame{Type: e.Kind(), To: e.To}
	case core.IdentityInfo:
		v = identityFrame{Type: e.Kind(), ID: e.ConnectionID, Name: e.DisplayName, State: e.State.String()}
	case core.Pong:
		v = pongFrame{Type: e.Kind()}
	case core.Error:
		v = errorFrame{Type: e.Kind(), Code: e.Code, Message: e.Message}
	default:
		return nil, fmt.Errorf("encode: unsupported event %T", ev)
	}
	return json.Marshal(v)
}
