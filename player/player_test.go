package player

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

func TestControls(t *testing.T) {
	p := newPlayer(slog.New(slog.DiscardHandler))
	if p.IsControl(1, 10) {
		t.Error("control message before any was set")
	}
	p.SetControl(1, 10)
	p.SetControl(2, 20)
	if !p.IsControl(1, 10) || !p.IsControl(2, 20) {
		t.Error("control messages not recorded")
	}
	if p.IsControl(1, 20) {
		t.Error("control message leaked across guilds")
	}
	p.SetControl(1, 11)
	if p.IsControl(1, 10) {
		t.Error("replaced control message still counts")
	}
	p.ClearControl(1)
	if p.IsControl(1, 11) {
		t.Error("cleared control message still counts")
	}
}

func TestQueueEndClearsControl(t *testing.T) {
	p := newPlayer(slog.New(slog.DiscardHandler))
	p.SetControl(123, 456)
	h := &queueEndHandler{player: p}
	h.OnEventInvocation(nil, []byte(`{"op":"event","type":"QueueEndEvent","guildId":"123"}`))
	if p.IsControl(123, 456) {
		t.Error("queue end did not clear the control message")
	}

	p.SetControl(123, 456)
	h.OnEventInvocation(nil, []byte(`not json`))
	if !p.IsControl(123, 456) {
		t.Error("malformed event cleared the control message")
	}
}

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestUnmarshalBody(t *testing.T) {
	var q Queue
	if err := unmarshalBody(response(http.StatusOK, `{"tracks":[]}`), &q); err != nil {
		t.Errorf("ok body: %v", err)
	}
	if err := unmarshalBody(response(http.StatusNoContent, ``), &q); err != nil {
		t.Errorf("no content: %v", err)
	}
	if err := unmarshalBody(response(http.StatusOK, `ignored`), nil); err != nil {
		t.Errorf("nil value: %v", err)
	}
	err := unmarshalBody(response(http.StatusNotFound, `{"timestamp":0,"status":404,"error":"Not Found","message":"no player","path":"/"}`), &q)
	if err == nil || !strings.Contains(err.Error(), "lavalink error") {
		t.Errorf("error status: want lavalink error, got %v", err)
	}
	if err := unmarshalBody(response(http.StatusOK, `{`), &q); err == nil {
		t.Error("truncated body decoded")
	}
	if errors.Is(err, ErrQueueEmpty) {
		t.Error("error status reported as empty queue")
	}
}
