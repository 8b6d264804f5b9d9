package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	appcart "github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/dispatch"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// eventLog records opens and sleeps in call order
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type recordingOpener struct {
	log   *eventLog
	mu    sync.Mutex
	links []string
}

func (o *recordingOpener) OpenLink(unit dispatch.Unit, link string) {
	o.mu.Lock()
	o.links = append(o.links, link)
	o.mu.Unlock()
	if o.log != nil {
		o.log.add("open:" + unit.ChannelID)
	}
}

func (o *recordingOpener) Links() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.links...)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *recordingNotifier) Notify(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) ofKind(kind string) []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, 0)
	for _, notice := range n.notices {
		if notice.Kind == kind {
			out = append(out, notice)
		}
	}
	return out
}

// recordingTimer logs sleeps by name and runs continuations at once
type recordingTimer struct {
	log   *eventLog
	names map[time.Duration]string
}

func (t recordingTimer) AfterFunc(_ time.Duration, f func()) { go f() }

func (t recordingTimer) Sleep(d time.Duration) {
	t.log.add("sleep:" + t.names[d])
}

// manualTimer holds continuations until Fire is called
type manualTimer struct {
	mu      sync.Mutex
	pending []func()
}

func (t *manualTimer) AfterFunc(_ time.Duration, f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, f)
}

func (t *manualTimer) Sleep(time.Duration) {}

func (t *manualTimer) Fire() {
	t.mu.Lock()
	fns := t.pending
	t.pending = nil
	t.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

// gateTimer blocks every Sleep until the gate is opened
type gateTimer struct {
	gate chan struct{}
}

func (t gateTimer) AfterFunc(_ time.Duration, f func()) { go f() }

func (t gateTimer) Sleep(time.Duration) { <-t.gate }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BulkSettleDelay = time.Second
	cfg.BulkInterGroupDelay = 2 * time.Second
	cfg.BulkFinalDelay = 500 * time.Millisecond
	return cfg
}

func sleepNames(cfg Config) map[time.Duration]string {
	return map[time.Duration]string{
		cfg.BulkSettleDelay:     "settle",
		cfg.BulkInterGroupDelay: "inter",
		cfg.BulkFinalDelay:      "final",
	}
}

func newSeller(first, phone string) *catalog.Seller {
	return &catalog.Seller{ID: uuid.New(), FirstName: first, Province: "La Habana", WhatsAppPhone: phone}
}

func newProduct(t *testing.T, name, price string, seller *catalog.Seller) catalog.Product {
	t.Helper()
	sellerID := uuid.New()
	if seller != nil {
		sellerID = seller.ID
	}
	p, err := catalog.NewProduct(sellerID, catalog.ProductDetails{Name: name, Price: decimal.RequireFromString(price)})
	require.NoError(t, err)
	p.Seller = seller
	return *p
}

func newCart(t *testing.T, products ...catalog.Product) *appcart.Service {
	t.Helper()
	svc := appcart.NewService(cache.NewMemoryCartStorage(), "storefront:cart:test")
	for _, p := range products {
		require.NoError(t, svc.AddItem(context.Background(), p, 1))
	}
	return svc
}
