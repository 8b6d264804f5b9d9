package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/dto"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseReader reads server-sent events from a stream body
type sseReader struct {
	scanner *bufio.Scanner
}

func (r *sseReader) next(t *testing.T) SSEMessage {
	t.Helper()
	var msg SSEMessage
	for r.scanner.Scan() {
		line := r.scanner.Text()
		switch {
		case line == "":
			if msg.Event != "" {
				return msg
			}
		case strings.HasPrefix(line, "event: "):
			msg.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			msg.Data = strings.TrimPrefix(line, "data: ")
		}
	}
	require.NoError(t, r.scanner.Err())
	t.Fatal("stream closed")
	return msg
}

// until skips events until one named event arrives
func (r *sseReader) until(t *testing.T, event string) SSEMessage {
	t.Helper()
	for {
		if msg := r.next(t); msg.Event == event {
			return msg
		}
	}
}

func openStream(t *testing.T, ctx context.Context, url, session string) *sseReader {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/v1/checkout/stream", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.HeaderCartSession, session)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return &sseReader{scanner: bufio.NewScanner(resp.Body)}
}

func TestCheckoutHandler_Stream(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.engine)
	t.Cleanup(server.Close)

	session := uuid.NewString()
	fillCart(t, env, request{session: session})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stream := openStream(t, ctx, server.URL, session)

	assert.Equal(t, EventConnected, stream.next(t).Event)

	cartMsg := stream.next(t)
	require.Equal(t, EventCart, cartMsg.Event)
	var view dto.CartView
	require.NoError(t, json.Unmarshal([]byte(cartMsg.Data), &view))
	assert.Len(t, view.Items, 2)

	assert.Equal(t, EventState, stream.next(t).Event)

	w := env.do(request{method: http.MethodPost, path: "/checkout", session: session})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var link OpenLinkEvent
	require.NoError(t, json.Unmarshal([]byte(stream.until(t, EventOpenLink).Data), &link))
	assert.Equal(t, "channel:5355550001", link.UnitKey)
	assert.Equal(t, "12.49", link.Total)
	assert.True(t, strings.HasPrefix(link.Link, "https://wa.me/5355550001?text="))

	cancel()
}

func TestStreamHub_MaxClients(t *testing.T) {
	hub := NewStreamHub(WithStreamMaxClients(1), WithStreamHeartbeat(time.Hour))
	t.Cleanup(hub.Stop)

	_, ok := hub.register("anon:a")
	require.True(t, ok)

	engine := gin.New()
	engine.GET("/stream", func(c *gin.Context) { hub.Serve(c, "anon:b") })
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodeMaxConnection, errorCode(t, w))
	assert.Equal(t, 1, hub.ClientCount())
}

func TestStreamHub_PublishRoutesBySession(t *testing.T) {
	hub := NewStreamHub(WithStreamHeartbeat(time.Hour))
	t.Cleanup(hub.Stop)

	mine, ok := hub.register("anon:mine")
	require.True(t, ok)
	other, ok := hub.register("anon:other")
	require.True(t, ok)

	hub.Sink("anon:mine").PublishCart(nil)

	select {
	case msg := <-mine.ch:
		assert.Equal(t, EventCart, msg.Event)
	case <-time.After(time.Second):
		t.Fatal("no event for the session")
	}
	assert.Empty(t, other.ch)

	hub.unregister("anon:mine", mine)
	hub.unregister("anon:other", other)
	assert.Zero(t, hub.ClientCount())
}
