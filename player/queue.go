package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
)

var (
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrFailedToStop    = errors.New("failed to stop player")
	ErrUnmarshalFailed = errors.New("failed to unmarshal response")
)

type Queue struct {
	Tracks []lavalink.Track `json:"tracks"`
}

type QueueTrack struct {
	Encoded  string         `json:"encoded"`
	UserData map[string]any `json:"userData,omitempty"`
}

// queueRequest sends a request to the lavaqueue plugin endpoint for the
// guild's player. path is appended to .../players/{guild}.
func (p *Player) queueRequest(ctx context.Context, method string, guildID snowflake.ID, path string, body any) (*http.Response, error) {
	node := p.BestNode()

	var reader io.Reader
	if body != nil {
		var err error
		if reader, err = marshalBody(body); err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
	}

	request, err := http.NewRequestWithContext(ctx, method,
		fmt.Sprintf("/v4/sessions/%s/players/%s%s", node.SessionID(), guildID, path), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		request.Header.Add("Content-Type", "application/json")
	}

	response, err := node.Rest().Do(request)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return response, nil
}

func (p *Player) GetQueue(ctx context.Context, guildID snowflake.ID) (*Queue, error) {
	response, err := p.queueRequest(ctx, http.MethodGet, guildID, "/queue", nil)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var queue Queue
	if err = unmarshalBody(response, &queue); err != nil {
		return nil, fmt.Errorf("unmarshal queue: %w", err)
	}
	return &queue, nil
}

func (p *Player) AddToQueue(ctx context.Context, guildID snowflake.ID, tracks []QueueTrack) (*lavalink.Track, error) {
	response, err := p.queueRequest(ctx, http.MethodPost, guildID, "/queue/tracks", tracks)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNoContent {
		return nil, ErrQueueEmpty
	}

	var track lavalink.Track
	if err = unmarshalBody(response, &track); err != nil {
		return nil, fmt.Errorf("unmarshal track: %w", err)
	}
	return &track, nil
}

// NextTrack skips to the next queued track. At the end of the queue the
// player is stopped and ErrQueueEmpty returned.
func (p *Player) NextTrack(ctx context.Context, guildID snowflake.ID) (*lavalink.Track, error) {
	response, err := p.queueRequest(ctx, http.MethodPost, guildID, "/queue/next?count=1", nil)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNoContent {
		if stopErr := p.Stop(ctx, guildID); stopErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrQueueEmpty, stopErr)
		}
		return nil, ErrQueueEmpty
	}

	var track lavalink.Track
	if err = unmarshalBody(response, &track); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return &track, nil
}

func (p *Player) ClearQueue(ctx context.Context, guildID snowflake.ID) error {
	response, err := p.queueRequest(ctx, http.MethodDelete, guildID, "/queue", nil)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if err := unmarshalBody(response, nil); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func marshalBody(value any) (io.Reader, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return bytes.NewReader(data), nil
}

func unmarshalBody(response *http.Response, value any) error {
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var lavalinkError lavalink.Error
		if err := json.NewDecoder(response.Body).Decode(&lavalinkError); err != nil {
			return fmt.Errorf("decode lavalink error: %w", err)
		}
		return fmt.Errorf("lavalink error: %w", lavalinkError)
	}

	if response.StatusCode == http.StatusNoContent || value == nil {
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(value); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// RequesterID reads the requesterId stored in a queued track's user data.
func RequesterID(track lavalink.Track) string {
	if len(track.UserData) == 0 {
		return ""
	}
	var data map[string]any
	if err := json.Unmarshal(track.UserData, &data); err != nil {
		return ""
	}
	id, _ := data["requesterId"].(string)
	return id
}
