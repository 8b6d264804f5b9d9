package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/checkout"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/session"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/dispatch"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event names of the checkout stream
const (
	EventConnected = "connected"
	EventOpenLink  = "open_link"
	EventNotice    = "notice"
	EventState     = "state"
	EventCart      = "cart"
	EventHeartbeat = "heartbeat"
)

const streamBufferSize = 64

// SSEMessage is one server-sent event
type SSEMessage struct {
	Event string
	Data  string
	ID    string
}

// OpenLinkEvent asks the client to open a prefilled chat
type OpenLinkEvent struct {
	UnitKey    string            `json:"unit_key"`
	Kind       dispatch.UnitKind `json:"kind"`
	ChannelID  string            `json:"channel_id"`
	SellerName string            `json:"seller_name"`
	Total      string            `json:"total"`
	Link       string            `json:"link"`
}

type streamClient struct {
	id string
	ch chan SSEMessage
}

// StreamHub fans dispatch output and cart updates out to the event streams
// of each cart session. The browser receiving open_link performs the chat
// handoff.
type StreamHub struct {
	mu         sync.Mutex
	sessions   map[string]map[string]*streamClient
	count      int
	seq        atomic.Uint64
	heartbeat  time.Duration
	maxClients int
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

// StreamOption configures a StreamHub
type StreamOption func(*StreamHub)

// WithStreamLogger sets the hub logger
func WithStreamLogger(l *zap.Logger) StreamOption {
	return func(h *StreamHub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithStreamHeartbeat sets the heartbeat interval
func WithStreamHeartbeat(d time.Duration) StreamOption {
	return func(h *StreamHub) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// WithStreamMaxClients caps concurrent streams across all sessions
func WithStreamMaxClients(n int) StreamOption {
	return func(h *StreamHub) {
		h.maxClients = n
	}
}

// NewStreamHub creates a hub
func NewStreamHub(opts ...StreamOption) *StreamHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &StreamHub{
		sessions:   make(map[string]map[string]*streamClient),
		heartbeat:  30 * time.Second,
		maxClients: 10000,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Sink returns the session.Sink of sessionID
func (h *StreamHub) Sink(sessionID string) session.Sink {
	return &sessionSink{hub: h, session: sessionID}
}

// Stop ends every open stream
func (h *StreamHub) Stop() {
	h.cancel()
}

// ClientCount returns the number of open streams
func (h *StreamHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func (h *StreamHub) register(sessionID string) (*streamClient, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maxClients > 0 && h.count >= h.maxClients {
		return nil, false
	}
	client := &streamClient{
		id: uuid.NewString(),
		ch: make(chan SSEMessage, streamBufferSize),
	}
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[string]*streamClient)
	}
	h.sessions[sessionID][client.id] = client
	h.count++
	return client, true
}

func (h *StreamHub) unregister(sessionID string, client *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.sessions[sessionID]
	if _, ok := clients[client.id]; !ok {
		return
	}
	delete(clients, client.id)
	if len(clients) == 0 {
		delete(h.sessions, sessionID)
	}
	h.count--
}

// publish delivers an event to every stream of sessionID. Slow clients
// lose events rather than blocking the dispatcher.
func (h *StreamHub) publish(sessionID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal stream event", zap.String("event", event), zap.Error(err))
		return
	}
	msg := SSEMessage{Event: event, Data: string(data), ID: strconv.FormatUint(h.seq.Add(1), 10)}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.sessions[sessionID] {
		select {
		case client.ch <- msg:
		default:
			h.logger.Warn("stream client too slow, dropping event",
				zap.String("client_id", client.id),
				zap.String("event", event))
		}
	}
}

// Serve streams the events of sessionID until the client goes away or the
// hub stops. initial events are written first.
func (h *StreamHub) Serve(c *gin.Context, sessionID string, initial ...SSEMessage) {
	client, ok := h.register(sessionID)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(dto.ErrCodeMaxConnection,
			"Maximum number of event streams reached"))
		return
	}
	defer h.unregister(sessionID, client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	log := h.logger.With(zap.String("client_id", client.id), zap.String("cart_session", sessionID))
	log.Debug("stream client connected")

	writeEvent(c.Writer, SSEMessage{
		Event: EventConnected,
		Data:  fmt.Sprintf(`{"client_id":%q}`, client.id),
	})
	for _, msg := range initial {
		writeEvent(c.Writer, msg)
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			log.Debug("stream client disconnected")
			return
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			writeEvent(c.Writer, SSEMessage{
				Event: EventHeartbeat,
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
			c.Writer.Flush()
		case msg := <-client.ch:
			writeEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// NewEvent encodes payload as a stream event
func NewEvent(event string, payload any) (SSEMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return SSEMessage{}, err
	}
	return SSEMessage{Event: event, Data: string(data)}, nil
}

func writeEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

// sessionSink routes one session's dispatch output to its streams
type sessionSink struct {
	hub     *StreamHub
	session string
}

func (s *sessionSink) OpenLink(unit dispatch.Unit, link string) {
	s.hub.publish(s.session, EventOpenLink, OpenLinkEvent{
		UnitKey:    unit.Key(),
		Kind:       unit.Kind,
		ChannelID:  unit.ChannelID,
		SellerName: unit.SellerName(),
		Total:      cart.FormatAmount(unit.Total()),
		Link:       link,
	})
}

func (s *sessionSink) Notify(n checkout.Notice) {
	s.hub.publish(s.session, EventNotice, n)
}

func (s *sessionSink) PublishState(status checkout.Status) {
	s.hub.publish(s.session, EventState, status)
}

func (s *sessionSink) PublishCart(items []cart.LineItem) {
	s.hub.publish(s.session, EventCart, dto.NewCartView(items))
}
