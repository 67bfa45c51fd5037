package notification

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/raolivei/canopy-go/internal/errors"
	"github.com/raolivei/canopy-go/internal/observability/metrics"
)

// Default service tuning applied when a config value is missing.
const (
	DefaultDuration           = 5 * time.Second
	DefaultSubscriberBuffer   = 10
	DefaultRateLimitWindow    = time.Minute
	DefaultRateLimitMaxEvents = 100
)

// EventAction identifies what happened to a notification.
type EventAction string

const (
	// EventCreated is broadcast when a notification enters the registry
	EventCreated EventAction = "created"
	// EventDismissed is broadcast when a notification leaves the registry,
	// whether by explicit dismissal or timer expiry
	EventDismissed EventAction = "dismissed"
)

// Dismissal reasons, used as the metrics "reason" label.
const (
	dismissReasonUser    = "user"
	dismissReasonExpired = "expired"
)

// Event is a single entry on the subscription feed. The notification is a
// deep copy, so consumers can never reach registry state through it. Active
// is the registry length after the action took effect.
type Event struct {
	Action       EventAction   `json:"action"`
	Notification *Notification `json:"notification"`
	Active       int           `json:"active"`
}

// Subscriber is a cancellable handle on the event feed. Consumers read from
// Events and stop when either the channel closes or Done fires; they must
// never close the channel themselves.
type Subscriber struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc
}

// Events returns the subscriber's event channel.
func (sub *Subscriber) Events() <-chan Event {
	return sub.ch
}

// Context returns a context cancelled when the subscription ends, either by
// Unsubscribe or by service shutdown.
func (sub *Subscriber) Context() context.Context {
	return sub.ctx
}

// Service is the notification access point: one explicit object carrying the
// registry, the dismissal scheduler, the subscriber fan-out, and the rate
// limiter. Constructed once at application start and passed to the surfaces
// that need it.
type Service struct {
	store         Store
	scheduler     *Scheduler
	subscribers   []*Subscriber
	subscribersMu sync.RWMutex
	rateLimiter   *RateLimiter
	ctx           context.Context
	cancel        context.CancelFunc
	logger        *slog.Logger
	config        *ServiceConfig
	metrics       *metrics.NotificationMetrics
}

// ServiceConfig holds the tuning knobs for the notification service.
type ServiceConfig struct {
	// Debug enables debug logging for the service
	Debug bool
	// DefaultDuration is the auto-dismiss delay applied when Notify is
	// called without a duration option
	DefaultDuration time.Duration
	// SubscriberBuffer is the per-subscriber event channel capacity
	SubscriberBuffer int
	// RateLimitWindow is the time window for rate limiting
	RateLimitWindow time.Duration
	// RateLimitMaxEvents is the maximum number of notifications per window
	RateLimitMaxEvents int
}

// DefaultServiceConfig returns a default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		DefaultDuration:    DefaultDuration,
		SubscriberBuffer:   DefaultSubscriberBuffer,
		RateLimitWindow:    DefaultRateLimitWindow,
		RateLimitMaxEvents: DefaultRateLimitMaxEvents,
	}
}

// normalize fills zero-valued fields with defaults so a partially populated
// config cannot produce unbuffered channels or a zero-length rate window.
func (c *ServiceConfig) normalize() {
	if c.DefaultDuration == 0 {
		c.DefaultDuration = DefaultDuration
	}
	if c.SubscriberBuffer <= 0 {
		c.SubscriberBuffer = DefaultSubscriberBuffer
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = DefaultRateLimitWindow
	}
	if c.RateLimitMaxEvents <= 0 {
		c.RateLimitMaxEvents = DefaultRateLimitMaxEvents
	}
}

// NewService creates a new notification service
func NewService(config *ServiceConfig) *Service {
	if config == nil {
		config = DefaultServiceConfig()
	}
	config.normalize()

	ctx, cancel := context.WithCancel(context.Background())

	service := &Service{
		store:       NewInMemoryStore(),
		subscribers: make([]*Subscriber, 0),
		rateLimiter: NewRateLimiter(config.RateLimitWindow, config.RateLimitMaxEvents),
		ctx:         ctx,
		cancel:      cancel,
		logger:      getFileLogger(config.Debug),
		config:      config,
	}
	service.scheduler = NewScheduler(service.expire)

	service.logger.Info("notification service initialized",
		"default_duration", config.DefaultDuration,
		"subscriber_buffer", config.SubscriberBuffer,
		"rate_limit_window", config.RateLimitWindow,
		"rate_limit_max_events", config.RateLimitMaxEvents,
		"debug", config.Debug)

	return service
}

// SetMetrics wires Prometheus metrics into the service. Nil is allowed and
// leaves recording disabled; call it once during startup, before traffic.
func (s *Service) SetMetrics(m *metrics.NotificationMetrics) {
	s.metrics = m
}

// notifyOptions collects the optional parts of a Notify call. The set flags
// distinguish "caller passed zero" from "caller passed nothing", so an
// explicit WithDuration(0) yields a sticky notification while omitting the
// option applies the configured default.
type notifyOptions struct {
	severity    Severity
	duration    time.Duration
	durationSet bool
	component   string
	metadata    map[string]any
}

// NotifyOption customizes a single Notify call.
type NotifyOption func(*notifyOptions)

// WithSeverity sets the notification severity. Unknown values are kept as
// given and render as info at the display boundary.
func WithSeverity(severity Severity) NotifyOption {
	return func(o *notifyOptions) {
		o.severity = severity
	}
}

// WithDuration sets the auto-dismiss delay. Zero or negative values make the
// notification sticky.
func WithDuration(d time.Duration) NotifyOption {
	return func(o *notifyOptions) {
		o.duration = d
		o.durationSet = true
	}
}

// WithComponent tags the notification with its originating subsystem.
func WithComponent(component string) NotifyOption {
	return func(o *notifyOptions) {
		o.component = component
	}
}

// WithMetadata attaches one metadata entry to the notification.
func WithMetadata(key string, value any) NotifyOption {
	return func(o *notifyOptions) {
		if o.metadata == nil {
			o.metadata = make(map[string]any)
		}
		o.metadata[key] = value
	}
}

// Notify creates a notification, stores it, arms its auto-dismiss timer, and
// broadcasts a created event to all subscribers. It performs no network
// calls and no persistence. The returned notification is caller-owned; the
// registry keeps its own copy.
func (s *Service) Notify(title, message string, opts ...NotifyOption) (*Notification, error) {
	start := time.Now()

	if title == "" {
		return nil, errors.Newf("notification title cannot be empty").
			Component("notification").
			Category(errors.CategoryValidation).
			Build()
	}

	options := notifyOptions{
		severity: DefaultSeverity,
		duration: s.config.DefaultDuration,
	}
	for _, opt := range opts {
		opt(&options)
	}

	n := NewNotification(options.severity, title, message)
	n.WithDuration(options.duration)
	if options.component != "" {
		n.WithComponent(options.component)
	}
	for k, v := range options.metadata {
		n.WithMetadata(k, v)
	}

	return s.publish(n, start)
}

// PublishToast converts a toast into a notification and publishes it.
// Toasts are ephemeral: a toast without an explicit duration gets the
// configured default rather than becoming sticky.
func (s *Service) PublishToast(t *Toast) (*Notification, error) {
	start := time.Now()

	if t == nil || t.Message == "" {
		return nil, errors.Newf("toast message cannot be empty").
			Component("notification").
			Category(errors.CategoryValidation).
			Build()
	}

	n := t.ToNotification()
	if n.Duration <= 0 {
		n.WithDuration(s.config.DefaultDuration)
	}

	return s.publish(n, start)
}

// publish is the single entry into the registry: rate limit, save, schedule
// the dismissal, broadcast the created event.
func (s *Service) publish(n *Notification, start time.Time) (*Notification, error) {
	if !s.rateLimiter.Allow() {
		if s.metrics != nil {
			s.metrics.RecordRateLimited()
		}
		return nil, errors.Newf("notification rate limit exceeded").
			Component("notification").
			Category(errors.CategoryLimit).
			Context("window", s.config.RateLimitWindow.String()).
			Context("max_events", s.config.RateLimitMaxEvents).
			Build()
	}

	s.store.Save(n)
	s.scheduler.Schedule(n.ID, n.Duration)
	s.broadcast(EventCreated, n)

	if s.metrics != nil {
		s.metrics.RecordCreated(string(n.Severity), n.Component)
		s.metrics.SetActive(s.store.Len())
		s.metrics.ObserveNotifyDuration(time.Since(start).Seconds())
	}

	if s.config.Debug {
		s.logger.Debug("notification created",
			"id", n.ID,
			"severity", n.Severity,
			"duration", n.Duration,
			"sticky", n.Sticky(),
			"toast", IsToast(n))
	}

	return n, nil
}

// Dismiss removes a notification before its timer fires. It cancels the
// pending timer, deletes the entry, and broadcasts a dismissed event. The
// operation is total: dismissing an unknown, already-expired, or
// already-dismissed id does nothing and never errors.
func (s *Service) Dismiss(id string) {
	s.scheduler.Cancel(id)
	s.remove(id, dismissReasonUser)
}

// expire is the scheduler callback for fired timers. A fire that raced an
// explicit dismissal finds the entry gone and has no effect.
func (s *Service) expire(id string) {
	s.remove(id, dismissReasonExpired)
}

// remove deletes id from the registry and, when an entry was actually
// removed, broadcasts the dismissal. Absent ids are silent no-ops, which is
// what makes the user-dismiss versus timer-fire race harmless.
func (s *Service) remove(id, reason string) {
	removed := s.store.Remove(id)
	if removed == nil {
		return
	}

	s.broadcast(EventDismissed, removed)

	if s.metrics != nil {
		s.metrics.RecordDismissed(string(removed.Severity), reason)
		s.metrics.SetActive(s.store.Len())
	}

	if s.config.Debug {
		s.logger.Debug("notification removed",
			"id", id,
			"reason", reason,
			"active", s.store.Len())
	}
}

// Get returns a copy of a single notification, or ErrNotificationNotFound.
func (s *Service) Get(id string) (*Notification, error) {
	if n := s.store.Get(id); n != nil {
		return n, nil
	}
	return nil, ErrNotificationNotFound
}

// List returns copies of all active notifications in insertion order,
// oldest first.
func (s *Service) List() ([]*Notification, error) {
	return s.store.List(), nil
}

// Active returns the number of active notifications.
func (s *Service) Active() int {
	return s.store.Len()
}

// Subscribe attaches a new consumer to the event feed.
//
// The returned subscriber carries a buffered channel and a context derived
// from the service's own; the context is cancelled by Unsubscribe or by
// service shutdown. Consumers must drain Events and watch Context().Done(),
// and must not close the channel.
//
// Example usage:
//
//	sub := service.Subscribe()
//	defer service.Unsubscribe(sub)
//	for {
//		select {
//		case event, ok := <-sub.Events():
//			if !ok {
//				return // service shut down
//			}
//			// render event
//		case <-sub.Context().Done():
//			return
//		}
//	}
func (s *Service) Subscribe() *Subscriber {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	ctx, cancel := context.WithCancel(s.ctx)
	sub := &Subscriber{
		ch:     make(chan Event, s.config.SubscriberBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
	s.subscribers = append(s.subscribers, sub)

	if s.metrics != nil {
		s.metrics.SetSubscribers(len(s.subscribers))
	}
	if s.config.Debug {
		s.logger.Debug("subscriber added",
			"total_subscribers", len(s.subscribers))
	}

	return sub
}

// Unsubscribe detaches a subscriber and cancels its context. The feed is the
// only thing torn down: registry contents and pending timers are untouched.
// Unsubscribing an already-detached subscriber is a no-op.
func (s *Service) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	for i, existing := range s.subscribers {
		if existing == sub {
			existing.cancel()
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)

			if s.metrics != nil {
				s.metrics.SetSubscribers(len(s.subscribers))
			}
			if s.config.Debug {
				s.logger.Debug("subscriber removed",
					"remaining_subscribers", len(s.subscribers))
			}

			break
		}
	}
}

// SubscriberCount returns the number of attached subscribers.
func (s *Service) SubscriberCount() int {
	s.subscribersMu.RLock()
	defer s.subscribersMu.RUnlock()
	return len(s.subscribers)
}

// broadcastStats tracks fan-out results for one event.
type broadcastStats struct {
	delivered int
	dropped   int
	cancelled int
}

// broadcast fans an event out to all subscribers. Sends never block: a
// subscriber whose buffer is full loses the event rather than wedging the
// notify path. Cancelled subscribers found along the way are pruned.
func (s *Service) broadcast(action EventAction, n *Notification) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	if len(s.subscribers) == 0 {
		return
	}

	event := Event{
		Action:       action,
		Notification: n,
		Active:       s.store.Len(),
	}

	active, stats := s.processSubscribers(event)
	s.subscribers = active

	if s.metrics != nil {
		if stats.dropped > 0 {
			s.metrics.RecordDropped(string(action), stats.dropped)
		}
		s.metrics.SetSubscribers(len(active))
	}
	s.logBroadcast(event, stats, len(active))
}

// processSubscribers delivers the event to every live subscriber and returns
// the pruned subscriber list.
func (s *Service) processSubscribers(event Event) ([]*Subscriber, broadcastStats) {
	active := make([]*Subscriber, 0, len(s.subscribers))
	var stats broadcastStats

	for _, sub := range s.subscribers {
		if s.isSubscriberCancelled(sub) {
			stats.cancelled++
			continue
		}

		active = append(active, sub)
		if s.sendToSubscriber(sub, event) {
			stats.delivered++
		} else {
			stats.dropped++
		}
	}

	return active, stats
}

// isSubscriberCancelled checks whether a subscriber's context is done.
func (s *Service) isSubscriberCancelled(sub *Subscriber) bool {
	select {
	case <-sub.ctx.Done():
		return true
	default:
		return false
	}
}

// sendToSubscriber delivers the event with its own deep copy of the
// notification, so no two subscribers share state. Returns false when the
// subscriber's buffer was full and the event was dropped.
func (s *Service) sendToSubscriber(sub *Subscriber, event Event) bool {
	event.Notification = event.Notification.Clone()
	select {
	case sub.ch <- event:
		return true
	default:
		return false
	}
}

// logBroadcast reports fan-out results. Drops are warnings even outside
// debug mode since they mean a render surface is falling behind.
func (s *Service) logBroadcast(event Event, stats broadcastStats, activeCount int) {
	if stats.dropped > 0 {
		s.logger.Warn("subscriber buffer full, event dropped",
			"action", event.Action,
			"notification_id", event.Notification.ID,
			"dropped", stats.dropped,
			"delivered", stats.delivered)
		return
	}

	if s.config.Debug {
		s.logger.Debug("event broadcast",
			"action", event.Action,
			"notification_id", event.Notification.ID,
			"delivered", stats.delivered,
			"cancelled", stats.cancelled,
			"active_subscribers", activeCount)
	}
}

// Stop shuts the service down: every pending timer is cancelled, every
// subscriber context is cancelled and its channel closed. Safe to call once;
// operations invoked after Stop still work against the registry but no
// longer reach any subscriber.
func (s *Service) Stop() {
	s.logger.Info("notification service shutting down")

	s.cancel()
	s.scheduler.CancelAll()

	s.subscribersMu.Lock()
	subscriberCount := len(s.subscribers)
	for _, sub := range s.subscribers {
		sub.cancel()
		close(sub.ch)
	}
	s.subscribers = nil
	s.subscribersMu.Unlock()

	if s.metrics != nil {
		s.metrics.SetSubscribers(0)
	}

	s.logger.Info("notification service stopped",
		"subscribers_cancelled", subscriberCount,
		"active_notifications", s.store.Len())

	if err := CloseLogger(); err != nil {
		slog.Default().Error("failed to close notification logger", "error", err)
	}
}
