package checkout

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/dispatch"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var (
	// ErrDispatchInProgress is returned when a bulk dispatch is already running
	ErrDispatchInProgress = shared.NewDomainError("DISPATCH_IN_PROGRESS", "A send to all sellers is already running")
	// ErrEmptyCart is returned when there is nothing to send
	ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "The cart is empty")
)

// DefaultChannelBaseURL is the click-to-chat endpoint links are built on
const DefaultChannelBaseURL = "https://wa.me"

// Config names every dispatch delay
type Config struct {
	StoreName           string
	ChannelBaseURL      string
	MinChannelDigits    int
	ConfirmDelay        time.Duration
	ReleaseDelay        time.Duration
	BulkSettleDelay     time.Duration
	BulkInterGroupDelay time.Duration
	BulkFinalDelay      time.Duration
}

// DefaultConfig returns the storefront timings
func DefaultConfig() Config {
	return Config{
		StoreName:           dispatch.DefaultStoreName,
		ChannelBaseURL:      DefaultChannelBaseURL,
		MinChannelDigits:    10,
		ConfirmDelay:        time.Second,
		ReleaseDelay:        1500 * time.Millisecond,
		BulkSettleDelay:     time.Second,
		BulkInterGroupDelay: 2 * time.Second,
		BulkFinalDelay:      500 * time.Millisecond,
	}
}

// ItemSource provides the cart snapshot a dispatch works on
type ItemSource interface {
	Items() []cart.LineItem
}

// LinkOpener hands a composed link to the client. It must not block.
type LinkOpener interface {
	OpenLink(unit dispatch.Unit, link string)
}

// Notice kinds
const (
	NoticeSent            = "sent"
	NoticeValidationError = "validation_error"
	NoticeBusy            = "busy"
	NoticeBulkComplete    = "bulk_complete"
)

// Notice is a user-facing message about a send
type Notice struct {
	Kind       string `json:"kind"`
	UnitKey    string `json:"unit_key,omitempty"`
	SellerName string `json:"seller_name,omitempty"`
	Message    string `json:"message"`
}

// Notifier surfaces notices to the client. It must not block.
type Notifier interface {
	Notify(n Notice)
}

// Status is a snapshot of the in-flight bookkeeping
type Status struct {
	InFlightChannels  []string `json:"in_flight_channels"`
	InFlightItems     []string `json:"in_flight_items"`
	CurrentProcessing string   `json:"current_processing,omitempty"`
	BulkRunning       bool     `json:"bulk_running"`
}

// BulkOptions adjusts a send to all sellers
type BulkOptions struct {
	// Customer adds buyer lines to every message
	Customer *dispatch.Customer
	// Items replaces the cart snapshot when set
	Items []cart.LineItem
	// OnComplete runs after the final confirmation
	OnComplete func(ctx context.Context, report BulkReport)
}

// BulkReport lists the outcome of every unit of a bulk send
type BulkReport struct {
	Results   []dispatch.Result `json:"results"`
	Attempted int               `json:"attempted"`
	Skipped   int               `json:"skipped"`
	Cancelled bool              `json:"cancelled"`
}

func (r *BulkReport) add(res dispatch.Result) {
	r.Results = append(r.Results, res)
	if res.IsAttempted() {
		r.Attempted++
	} else {
		r.Skipped++
	}
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithTimer replaces the wall clock
func WithTimer(t Timer) DispatcherOption {
	return func(d *Dispatcher) {
		d.timer = t
	}
}

// WithDispatchLogger sets the logger
func WithDispatchLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDispatchMetrics sets the metrics recorder
func WithDispatchMetrics(m *telemetry.CheckoutMetrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithStateListener registers a callback run whenever Status changes
func WithStateListener(fn func(Status)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onState = fn
	}
}

// Dispatcher sends cart groups and items to sellers. In-flight exclusion is
// keyed by normalized channel id on every path; the item set only drives
// per-item UI state. The cart is never modified.
type Dispatcher struct {
	cfg      Config
	source   ItemSource
	opener   LinkOpener
	notifier Notifier
	composer *dispatch.Composer
	timer    Timer
	metrics  *telemetry.CheckoutMetrics
	logger   *zap.Logger
	onState  func(Status)

	mu                sync.Mutex
	inFlightChannels  map[string]struct{}
	inFlightItems     map[uuid.UUID]struct{}
	currentProcessing string
	bulkRunning       bool

	pending sync.WaitGroup
}

// NewDispatcher creates a dispatcher for one cart session
func NewDispatcher(cfg Config, source ItemSource, opener LinkOpener, notifier Notifier, opts ...DispatcherOption) *Dispatcher {
	def := DefaultConfig()
	if cfg.ChannelBaseURL == "" {
		cfg.ChannelBaseURL = def.ChannelBaseURL
	}
	if cfg.MinChannelDigits <= 0 {
		cfg.MinChannelDigits = def.MinChannelDigits
	}
	d := &Dispatcher{
		cfg:              cfg,
		source:           source,
		opener:           opener,
		notifier:         notifier,
		composer:         dispatch.NewComposer(dispatch.DefaultTemplate(cfg.StoreName)),
		timer:            RealTimer{},
		logger:           zap.NewNop(),
		inFlightChannels: make(map[string]struct{}),
		inFlightItems:    make(map[uuid.UUID]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendGroup sends the channel group of channelID
func (d *Dispatcher) SendGroup(ctx context.Context, channelID string) (dispatch.Result, error) {
	grouping := cart.GroupByChannel(d.source.Items())
	group, ok := grouping.Find(cart.NormalizeChannel(channelID))
	if !ok {
		return dispatch.Result{}, shared.NewDomainError(shared.ErrNotFound.Code,
			fmt.Sprintf("No cart items for channel %s", channelID))
	}
	return d.sendOne(ctx, dispatch.GroupUnit(group)), nil
}

// SendItem sends a single line item on its own
func (d *Dispatcher) SendItem(ctx context.Context, productID uuid.UUID) (dispatch.Result, error) {
	item, ok := cart.New(d.source.Items()).Find(productID)
	if !ok {
		return dispatch.Result{}, shared.NewDomainError(shared.ErrNotFound.Code, "Product is not in the cart")
	}
	return d.sendOne(ctx, dispatch.ItemUnit(item)), nil
}

// sendOne runs an individual send; confirmation and release are scheduled
func (d *Dispatcher) sendOne(ctx context.Context, unit dispatch.Unit) dispatch.Result {
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "send_"+string(unit.Kind),
		attribute.String("dispatch.unit", unit.Key()))
	defer span.End()

	res, ok := d.preflight(ctx, unit)
	if !ok {
		return res
	}
	res = d.open(ctx, unit, nil)

	d.schedule(d.cfg.ConfirmDelay, func() {
		d.notifier.Notify(Notice{
			Kind:       NoticeSent,
			UnitKey:    unit.Key(),
			SellerName: unit.SellerName(),
			Message:    fmt.Sprintf("Order sent to %s", unit.SellerName()),
		})
	})
	d.schedule(d.cfg.ReleaseDelay, func() {
		d.release(unit)
	})
	return res
}

// StartAll claims the bulk slot and sends every group in the background
func (d *Dispatcher) StartAll(ctx context.Context, opts BulkOptions) error {
	claim, err := d.ClaimAll()
	if err != nil {
		return err
	}
	claim.Start(ctx, opts)
	return nil
}

// BulkClaim holds the bulk slot of a dispatcher until it is started or
// released. Only the first of Start and Release has an effect.
type BulkClaim struct {
	d    *Dispatcher
	once sync.Once
}

// ClaimAll reserves the bulk slot without sending anything yet
func (d *Dispatcher) ClaimAll() (*BulkClaim, error) {
	if err := d.claimBulk(); err != nil {
		return nil, err
	}
	return &BulkClaim{d: d}, nil
}

// Start runs the bulk send in the background on the claimed slot
func (c *BulkClaim) Start(ctx context.Context, opts BulkOptions) {
	c.once.Do(func() {
		ctx = context.WithoutCancel(ctx)
		c.d.pending.Add(1)
		go func() {
			defer c.d.pending.Done()
			telemetry.WithProfileLabels(ctx, func(ctx context.Context) {
				c.d.runBulk(ctx, opts)
			}, telemetry.ProfileLabelStage, "bulk_dispatch")
		}()
	})
}

// Release gives the slot back unused
func (c *BulkClaim) Release() {
	c.once.Do(func() {
		c.d.mu.Lock()
		c.d.bulkRunning = false
		c.d.mu.Unlock()
		c.d.publishState()
	})
}

// SendAll sends every channel group in order, one at a time, and reports
// each unit. Cancelling ctx stops before the next group's checks; a link
// already handed out is not undone.
func (d *Dispatcher) SendAll(ctx context.Context, opts BulkOptions) (BulkReport, error) {
	if err := d.claimBulk(); err != nil {
		return BulkReport{}, err
	}
	report := d.runBulk(ctx, opts)
	if report.Cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

func (d *Dispatcher) claimBulk() error {
	d.mu.Lock()
	if d.bulkRunning {
		d.mu.Unlock()
		return ErrDispatchInProgress
	}
	d.bulkRunning = true
	d.mu.Unlock()
	d.publishState()
	return nil
}

func (d *Dispatcher) runBulk(ctx context.Context, opts BulkOptions) BulkReport {
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "send_all")
	defer span.End()
	log := logger.WithLogger(ctx, d.logger)
	started := time.Now()

	items := opts.Items
	if items == nil {
		items = d.source.Items()
	}
	grouping := cart.GroupByChannel(items)
	report := BulkReport{Results: make([]dispatch.Result, 0, len(grouping.Groups)+len(grouping.Unroutable))}

	for i, group := range grouping.Groups {
		if ctx.Err() != nil {
			report.Cancelled = true
			log.Warn("bulk dispatch cancelled", zap.Int("remaining_groups", len(grouping.Groups)-i))
			break
		}
		unit := dispatch.GroupUnit(group)
		d.setCurrent(unit.ChannelID)

		res, ok := d.preflight(ctx, unit)
		if !ok {
			report.add(res)
			continue
		}
		report.add(d.open(ctx, unit, opts.Customer))

		d.timer.Sleep(d.cfg.BulkSettleDelay)
		d.release(unit)
		if i < len(grouping.Groups)-1 {
			d.timer.Sleep(d.cfg.BulkInterGroupDelay)
		}
	}

	if !report.Cancelled {
		for _, item := range grouping.Unroutable {
			res, _ := d.preflight(ctx, dispatch.UnroutableUnit(item))
			report.add(res)
		}
	}

	d.timer.Sleep(d.cfg.BulkFinalDelay)
	d.mu.Lock()
	d.currentProcessing = ""
	d.bulkRunning = false
	d.mu.Unlock()
	d.publishState()

	d.notifier.Notify(Notice{
		Kind:    NoticeBulkComplete,
		Message: fmt.Sprintf("Sent to %d of %d sellers", report.Attempted, report.Attempted+report.Skipped),
	})
	d.metrics.RecordBulkDuration(ctx, time.Since(started))
	span.SetAttributes(
		attribute.Int("dispatch.attempted", report.Attempted),
		attribute.Int("dispatch.skipped", report.Skipped))
	log.Info("bulk dispatch finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("skipped", report.Skipped),
		zap.Bool("cancelled", report.Cancelled))

	if opts.OnComplete != nil {
		opts.OnComplete(ctx, report)
	}
	return report
}

// preflight validates and claims the unit. It reports false with a
// VALIDATION_FAILED or BUSY result when the unit must not be sent.
func (d *Dispatcher) preflight(ctx context.Context, unit dispatch.Unit) (dispatch.Result, bool) {
	res := dispatch.Result{
		UnitKey:    unit.Key(),
		Kind:       unit.Kind,
		ChannelID:  unit.ChannelID,
		SellerName: unit.SellerName(),
	}
	log := logger.WithLogger(ctx, d.logger).With(
		zap.String("unit", unit.Key()),
		zap.String("seller", unit.SellerName()))

	if err := unit.Validate(d.cfg.MinChannelDigits); err != nil {
		res.Outcome = dispatch.OutcomeValidationFailed
		res.Reason = err.Error()
		d.metrics.RecordDispatch(ctx, string(unit.Kind), string(res.Outcome))
		log.Warn("dispatch unit rejected", zap.Error(err))
		d.notifier.Notify(Notice{
			Kind:       NoticeValidationError,
			UnitKey:    res.UnitKey,
			SellerName: res.SellerName,
			Message:    res.Reason,
		})
		return res, false
	}

	if !d.claim(unit) {
		res.Outcome = dispatch.OutcomeBusy
		res.Reason = fmt.Sprintf("A message to %s is already being sent", unit.SellerName())
		d.metrics.RecordDispatch(ctx, string(unit.Kind), string(res.Outcome))
		log.Info("dispatch unit busy")
		d.notifier.Notify(Notice{
			Kind:       NoticeBusy,
			UnitKey:    res.UnitKey,
			SellerName: res.SellerName,
			Message:    res.Reason,
		})
		return res, false
	}
	return res, true
}

// open composes the message and hands the link to the client
func (d *Dispatcher) open(ctx context.Context, unit dispatch.Unit, customer *dispatch.Customer) dispatch.Result {
	message := d.composer.Compose(dispatch.MessageInput{
		Seller:   unit.Seller,
		Items:    unit.Items,
		Customer: customer,
		Single:   unit.Kind == dispatch.UnitKindItem,
	})
	link := dispatch.BuildLink(d.cfg.ChannelBaseURL, unit.ChannelID, message)
	d.opener.OpenLink(unit, link)

	d.metrics.RecordDispatch(ctx, string(unit.Kind), string(dispatch.OutcomeAttempted))
	logger.WithLogger(ctx, d.logger).Info("dispatch link opened",
		zap.String("unit", unit.Key()),
		zap.String("channel", unit.ChannelID),
		zap.String("total", cart.FormatAmount(unit.Total())))

	return dispatch.Result{
		UnitKey:    unit.Key(),
		Kind:       unit.Kind,
		ChannelID:  unit.ChannelID,
		SellerName: unit.SellerName(),
		Outcome:    dispatch.OutcomeAttempted,
		Link:       link,
	}
}

func (d *Dispatcher) claim(unit dispatch.Unit) bool {
	d.mu.Lock()
	if _, busy := d.inFlightChannels[unit.ChannelID]; busy {
		d.mu.Unlock()
		return false
	}
	d.inFlightChannels[unit.ChannelID] = struct{}{}
	if unit.Kind == dispatch.UnitKindItem {
		d.inFlightItems[unit.ProductID] = struct{}{}
	}
	d.mu.Unlock()
	d.publishState()
	return true
}

func (d *Dispatcher) release(unit dispatch.Unit) {
	d.mu.Lock()
	delete(d.inFlightChannels, unit.ChannelID)
	if unit.Kind == dispatch.UnitKindItem {
		delete(d.inFlightItems, unit.ProductID)
	}
	d.mu.Unlock()
	d.publishState()
}

func (d *Dispatcher) setCurrent(channelID string) {
	d.mu.Lock()
	d.currentProcessing = channelID
	d.mu.Unlock()
	d.publishState()
}

func (d *Dispatcher) schedule(delay time.Duration, f func()) {
	d.pending.Add(1)
	d.timer.AfterFunc(delay, func() {
		defer d.pending.Done()
		f()
	})
}

// Status returns the current in-flight bookkeeping
func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := Status{
		InFlightChannels:  make([]string, 0, len(d.inFlightChannels)),
		InFlightItems:     make([]string, 0, len(d.inFlightItems)),
		CurrentProcessing: d.currentProcessing,
		BulkRunning:       d.bulkRunning,
	}
	for ch := range d.inFlightChannels {
		st.InFlightChannels = append(st.InFlightChannels, ch)
	}
	for id := range d.inFlightItems {
		st.InFlightItems = append(st.InFlightItems, id.String())
	}
	slices.Sort(st.InFlightChannels)
	slices.Sort(st.InFlightItems)
	return st
}

// IsIdle reports whether nothing is in flight
func (d *Dispatcher) IsIdle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.bulkRunning && len(d.inFlightChannels) == 0
}

// Wait blocks until scheduled confirmations, releases and background bulk
// sends have finished
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

func (d *Dispatcher) publishState() {
	if d.onState != nil {
		d.onState(d.Status())
	}
}
