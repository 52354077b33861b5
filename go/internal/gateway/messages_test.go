package gateway

import (
	"errors"
	"testing"

	"github.com/mcdev12/simviewer/go/internal/models"
)

func TestParseMessage(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		wantType MessageType
		wantErr  error
		check    func(t *testing.T, msg Message)
	}{
		{
			name:     "state sync carries full snapshot",
			raw:      `{"type":"state_sync","payload":{"tick":0,"phase":"pre_snap","players":[{"id":"qb1","role":"qb"}]}}`,
			wantType: MessageTypeStateSync,
			check: func(t *testing.T, msg Message) {
				if msg.Snapshot == nil || len(msg.Snapshot.Players) != 1 {
					t.Fatalf("expected snapshot with one player, got %+v", msg.Snapshot)
				}
				if msg.Snapshot.Players[0].Role != models.RoleQB {
					t.Errorf("expected qb role, got %q", msg.Snapshot.Players[0].Role)
				}
			},
		},
		{
			name:     "tick carries partial patch",
			raw:      `{"type":"tick","payload":{"tick":7,"is_paused":true}}`,
			wantType: MessageTypeTick,
			check: func(t *testing.T, msg Message) {
				if msg.Patch == nil || msg.Patch.Tick == nil || *msg.Patch.Tick != 7 {
					t.Fatalf("expected tick 7 patch, got %+v", msg.Patch)
				}
				if msg.Patch.Players != nil {
					t.Errorf("absent players should stay nil")
				}
			},
		},
		{
			name:     "complete carries full snapshot",
			raw:      `{"type":"complete","payload":{"tick":40,"is_complete":true,"play_outcome":"touchdown"}}`,
			wantType: MessageTypeComplete,
			check: func(t *testing.T, msg Message) {
				if msg.Snapshot == nil || msg.Snapshot.PlayOutcome != "touchdown" {
					t.Fatalf("unexpected snapshot %+v", msg.Snapshot)
				}
			},
		},
		{
			name:     "error surfaces message verbatim",
			raw:      `{"type":"error","message":"session not found"}`,
			wantType: MessageTypeError,
			check: func(t *testing.T, msg Message) {
				if msg.Error != "session not found" {
					t.Errorf("unexpected error text %q", msg.Error)
				}
			},
		},
		{
			name:    "unknown type is rejected",
			raw:     `{"type":"heartbeat"}`,
			wantErr: ErrUnknownMessageType,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := ParseMessage([]byte(tc.raw))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if msg.Type != tc.wantType {
				t.Fatalf("expected type %q, got %q", tc.wantType, msg.Type)
			}
			tc.check(t, msg)
		})
	}
}

func TestParseMessageRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":`)); err == nil {
		t.Fatalf("expected error for malformed json")
	}
	if _, err := ParseMessage([]byte(`{"type":"tick","payload":"nope"}`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
