package signal

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want core.InboundEvent
	}{
		{"join", `{"type":"join","name":"Alice"}`, core.Join{DisplayName: "Alice"}},
		{"legacy join", `{"type":"new-user-joined","name":"Alice"}`, core.Join{DisplayName: "Alice"}},
		{"message", `{"type":"message","body":"hi"}`, core.BroadcastMessage{Body: "hi"}},
		{"legacy group message", `{"type":"group-message","message":"hi"}`, core.BroadcastMessage{Body: "hi"}},
		{"private", `{"type":"private","to":"c1","body":"hey"}`, core.PrivateMessage{To: "c1", Body: "hey"}},
		{"legacy private", `{"type":"private-message","to":"c1","message":"hey"}`, core.PrivateMessage{To: "c1", Body: "hey"}},
		{"leave", `{"type":"leave"}`, core.Leave{}},
		{"ping", `{"type":"ping"}`, core.Ping{}},
		{"whoami", `{"type":"whoami"}`, core.WhoAmI{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, ev, err := decodeInbound([]byte(tt.in))
			req.NoError(err)
			req.Equal(tt.want, ev)
		})
	}
}

func TestDecodeInbound_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"not json", `hello`, ErrBadPayload},
		{"unknown type", `{"type":"offer"}`, ErrUnknownType},
		{"empty message", `{"type":"message"}`, ErrBadPayload},
		{"private without target", `{"type":"private","body":"x"}`, ErrBadPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decodeInbound([]byte(tt.in))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEncodeOutbound(t *testing.T) {
	tests := []struct {
		name string
		ev   core.OutboundEvent
		want string
	}{
		{"welcome", core.Welcome{ConnectionID: "c1"}, `{"type":"welcome","id":"c1"}`},
		{"user list", core.PresenceSnapshot{Participants: domain.PresenceSnapshot{"c1": "Alice"}}, `{"type":"user-list","users":{"c1":"Alice"}}`},
		{"empty user list", core.PresenceSnapshot{}, `{"type":"user-list","users":{}}`},
		{"receive", core.MessageReceived{ID: "m1", SenderName: "Bob", Body: "hey", From: "c2", Private: true},
			`{"type":"receive","id":"m1","name":"Bob","message":"hey","from":"c2","private":true}`},
		{"user left", core.UserLeft{DisplayName: "Alice"}, `{"type":"user-left","name":"Alice"}`},
		{"undelivered", core.Undelivered{To: "c9"}, `{"type":"undelivered","to":"c9"}`},
		{"identity", core.IdentityInfo{ConnectionID: "c1", State: core.Connected}, `{"type":"identity","id":"c1","state":"connected"}`},
		{"pong", core.Pong{}, `{"type":"pong"}`},
		{"error", core.Error{Code: "rate_limited", Message: "slow down"}, `{"type":"error","code":"rate_limited","message":"slow down"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got, err := encodeOutbound(tt.ev)
			req.NoError(err)
			req.JSONEq(tt.want, string(got))
			req.True(json.Valid(got))
		})
	}
}
