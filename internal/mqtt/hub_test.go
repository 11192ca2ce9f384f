package mqtt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"moyen/internal/domain"
)

type fakeMessage struct {
	topic string
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return nil }
func (m fakeMessage) Ack()              {}

type recordingResetter struct {
	ids []string
	err error
}

func (r *recordingResetter) ResetSession(_ context.Context, sessionID string) error {
	r.ids = append(r.ids, sessionID)
	return r.err
}

func testHub(r SessionResetter) *Hub {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHub(HubConfig{TopicPrefix: "moyen"}, r, logger)
}

func TestHandleReset(t *testing.T) {
	r := &recordingResetter{}
	h := testHub(r)

	h.handleReset(nil, fakeMessage{topic: TopicReset("moyen", "abc")})
	h.handleReset(nil, fakeMessage{topic: "other/session/xyz/reset"})
	h.handleReset(nil, fakeMessage{topic: TopicReset("moyen", "")})

	if len(r.ids) != 1 || r.ids[0] != "abc" {
		t.Fatalf("reset ids=%v, want [abc]", r.ids)
	}

	r.err = errors.New("store down")
	h.handleReset(nil, fakeMessage{topic: TopicReset("moyen", "def")})
	if len(r.ids) != 2 || r.ids[1] != "def" {
		t.Fatalf("reset ids=%v, want [abc def]", r.ids)
	}
}

func TestHandleResetWithoutResetter(t *testing.T) {
	h := testHub(nil)
	h.handleReset(nil, fakeMessage{topic: TopicReset("moyen", "abc")})

	r := &recordingResetter{}
	h.SetResetter(r)
	h.handleReset(nil, fakeMessage{topic: TopicReset("moyen", "abc")})
	if len(r.ids) != 1 {
		t.Fatalf("reset ids=%v, want [abc]", r.ids)
	}
}

func TestPublishTurnBeforeStart(t *testing.T) {
	h := testHub(nil)
	err := h.PublishTurn(context.Background(), domain.TurnEvent{SessionID: "abc"})
	if err == nil {
		t.Fatalf("expected error publishing before Start")
	}
}
