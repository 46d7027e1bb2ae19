package live

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/counsellive/voice-backend/internal/shared"
)

// State is the supervisor's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// DialFunc opens one transport session. Injectable for tests.
type DialFunc func(model string, cfg SessionConfig, cb Callbacks) (Transport, error)

type ClientOptions struct {
	Endpoint string
	APIKey   string
	Backoff  shared.BackoffConfig
	Logger   *slog.Logger
	Dial     DialFunc
}

// Client supervises one logical connection to the live endpoint: it owns the
// session handle, the reconnect state machine, and the retry timer. All state
// mutation goes through the client's own methods under one mutex; inbound
// frames are demultiplexed into events on the client's emitter.
type Client struct {
	dial    DialFunc
	backoff shared.BackoffConfig
	logger  *slog.Logger
	events  *Emitter

	mu               sync.Mutex
	state            State
	session          Transport
	model            string
	config           SessionConfig
	retryCount       int
	retryTimer       *time.Timer
	shouldRetry      bool
	manualDisconnect bool

	// dialGen numbers dial attempts; closedGen is the highest generation
	// whose close has been handled. Together they keep a close that arrives
	// while its own handshake is still uncommitted, or after a newer dial,
	// from clobbering live state.
	dialGen   int
	closedGen int
}

func NewClient(opts ClientOptions) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "live_client")

	c := &Client{
		backoff: shared.NormalizeBackoff(opts.Backoff),
		logger:  logger,
		events:  NewEmitter(),
		state:   StateDisconnected,
	}

	c.dial = opts.Dial
	if c.dial == nil {
		endpoint := opts.Endpoint
		apiKey := opts.APIKey
		c.dial = func(model string, cfg SessionConfig, cb Callbacks) (Transport, error) {
			return Dial(endpoint, apiKey, model, cfg, cb, logger)
		}
	}

	return c
}

// Events exposes the client's notification stream for subscribers.
func (c *Client) Events() *Emitter {
	return c.events
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) RetryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retryCount
}

// Connect starts a session toward model. It is accepted only from the
// disconnected state; any other state returns false with no side effects.
// On acceptance the first attempt runs synchronously and the return value
// reports whether it established a session; failed first attempts continue
// retrying in the background per the backoff policy.
func (c *Client) Connect(model string, cfg SessionConfig) bool {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return false
	}
	c.state = StateConnecting
	c.model = model
	c.config = cfg
	c.retryCount = 0
	c.shouldRetry = true
	c.manualDisconnect = false
	c.mu.Unlock()

	return c.attempt()
}

// attempt runs one handshake. The dial happens outside the lock; the result
// is committed only if a concurrent Disconnect has not intervened.
func (c *Client) attempt() bool {
	c.mu.Lock()
	c.dialGen++
	gen := c.dialGen
	model := c.model
	cfg := c.config
	retry := c.retryCount
	c.mu.Unlock()

	if retry > 0 {
		c.logger.Info("reconnecting to live endpoint", "model", model, "attempt", retry, "max_attempts", c.backoff.MaxAttempts)
	} else {
		c.logger.Info("connecting to live endpoint", "model", model)
	}

	sess, err := c.dial(model, cfg, Callbacks{
		OnOpen:    c.handleOpen,
		OnMessage: c.handleMessage,
		OnError:   c.handleError,
		OnClose: func(code int, reason string) {
			c.handleClose(gen, code, reason)
		},
	})
	if err != nil {
		c.logger.Error("live connection attempt failed", "attempt", retry+1, "error", err)
		c.mu.Lock()
		if c.shouldRetry && c.retryCount < c.backoff.MaxAttempts {
			msg := c.scheduleRetryLocked()
			c.mu.Unlock()
			c.logEvent("connection.retry", msg)
			return false
		}
		attempts := c.retryCount
		c.state = StateDisconnected
		c.mu.Unlock()
		c.logEvent("connection.failed", fmt.Sprintf("connection failed after %d attempts: %v", attempts, err))
		return false
	}

	c.mu.Lock()
	if !c.shouldRetry || c.closedGen >= gen {
		// Disconnect, or this session's own close, won the race while the
		// handshake was in flight.
		c.mu.Unlock()
		_ = sess.Close()
		return false
	}
	retries := c.retryCount
	c.session = sess
	c.retryCount = 0
	c.state = StateConnected
	c.mu.Unlock()

	if retries > 0 {
		c.logEvent("connection.success", fmt.Sprintf("successfully connected after %d retries", retries))
	} else {
		c.logEvent("connection.success", "successfully connected")
	}
	return true
}

// scheduleRetryLocked arms the retry timer and returns the log message to
// emit once the lock is released. Caller holds c.mu. The timer callback
// re-checks shouldRetry because Stop and firing can race.
func (c *Client) scheduleRetryLocked() string {
	c.retryCount++
	delay := c.backoff.DelayFor(c.retryCount)
	c.state = StateReconnecting

	c.logger.Info("scheduling live retry", "attempt", c.retryCount, "max_attempts", c.backoff.MaxAttempts, "delay", delay)

	c.retryTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if !c.shouldRetry {
			c.state = StateDisconnected
			c.mu.Unlock()
			return
		}
		c.retryTimer = nil
		c.mu.Unlock()
		c.attempt()
	})

	return fmt.Sprintf("scheduling retry %d/%d in %s", c.retryCount, c.backoff.MaxAttempts, delay)
}

// Disconnect tears the session down and suppresses any pending or future
// retries. Returns false when no session existed. Safe to call repeatedly.
func (c *Client) Disconnect() bool {
	c.mu.Lock()
	c.manualDisconnect = true
	c.shouldRetry = false
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	sess := c.session
	c.session = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if sess == nil {
		return false
	}
	_ = sess.Close()
	c.logEvent("client.close", "disconnected")
	return true
}

func (c *Client) handleOpen() {
	c.logEvent("client.open", "connected")
	c.events.Emit(EventOpen, nil)
}

func (c *Client) handleError(err error) {
	c.logEvent("server.error", err.Error())
	c.events.Emit(EventError, err)
}

// handleClose reacts to a close of the session dialed at generation gen.
// Closes for a superseded or already-handled generation are dropped. A manual
// disconnect just propagates the notification, a retryable code with budget
// remaining schedules a retry, anything else finalizes to disconnected. The
// dead transport is always released.
func (c *Client) handleClose(gen, code int, reason string) {
	c.logEvent("server.close", fmt.Sprintf("disconnected with code %d: %s", code, reason))

	c.mu.Lock()
	if gen != c.dialGen || gen <= c.closedGen {
		c.mu.Unlock()
		return
	}
	c.closedGen = gen

	if c.manualDisconnect {
		// The flag is cleared by the next accepted Connect, not here, so a
		// close racing a fresh Connect cannot observe a half-reset flag.
		c.mu.Unlock()
		c.logEvent("connection.manual_close", "connection closed manually")
		c.events.Emit(EventClose, CloseInfo{Code: code, Reason: reason})
		return
	}

	sess := c.session
	c.session = nil
	if isRetryableCloseCode(code, false) && c.shouldRetry && c.retryCount < c.backoff.MaxAttempts {
		msg := c.scheduleRetryLocked()
		c.mu.Unlock()
		if sess != nil {
			_ = sess.Close()
		}
		c.logEvent("connection.retryable_close", fmt.Sprintf("connection closed with retryable code %d: %s", code, reason))
		c.logEvent("connection.retry", msg)
	} else {
		c.shouldRetry = false
		c.state = StateDisconnected
		c.mu.Unlock()
		if sess != nil {
			_ = sess.Close()
		}
		c.logEvent("connection.final_close", fmt.Sprintf("connection closed permanently with code %d: %s", code, reason))
	}

	c.events.Emit(EventClose, CloseInfo{Code: code, Reason: reason})
}

// SendRealtimeInput forwards audio/video chunks to the live session. The
// batch's content kind is classified purely for logging. Dropped when no
// session is live.
func (c *Client) SendRealtimeInput(chunks []MediaChunk) {
	sess := c.currentSession()
	if sess == nil {
		c.logger.Debug("dropping realtime input, no live session")
		return
	}

	hasAudio := false
	hasVideo := false
	for _, ch := range chunks {
		if strings.Contains(ch.MIMEType, "audio") {
			hasAudio = true
		}
		if strings.Contains(ch.MIMEType, "image") {
			hasVideo = true
		}
		if hasAudio && hasVideo {
			break
		}
	}
	kind := "unknown"
	switch {
	case hasAudio && hasVideo:
		kind = "audio + video"
	case hasAudio:
		kind = "audio"
	case hasVideo:
		kind = "video"
	}

	if err := sess.SendRealtimeInput(chunks); err != nil {
		c.logger.Warn("realtime input send failed", "error", err)
		return
	}
	c.logEvent("client.realtimeInput", kind)
}

// SendToolResponse forwards tool-call results; no-op on an empty list or
// when no session is live.
func (c *Client) SendToolResponse(resp ToolResponse) {
	if len(resp.FunctionResponses) == 0 {
		return
	}
	sess := c.currentSession()
	if sess == nil {
		c.logger.Debug("dropping tool response, no live session")
		return
	}
	if err := sess.SendToolResponse(resp); err != nil {
		c.logger.Warn("tool response send failed", "error", err)
		return
	}
	c.logEvent("client.toolResponse", fmt.Sprintf("%d function responses", len(resp.FunctionResponses)))
}

// Send forwards a content turn plus the end-of-turn marker. Dropped when no
// session is live.
func (c *Client) Send(parts []Part, turnComplete bool) {
	sess := c.currentSession()
	if sess == nil {
		c.logger.Debug("dropping client content, no live session")
		return
	}
	turns := []Content{{Role: "user", Parts: parts}}
	if err := sess.SendClientContent(turns, turnComplete); err != nil {
		c.logger.Warn("client content send failed", "error", err)
		return
	}
	c.logEvent("client.send", fmt.Sprintf("%d parts, turnComplete=%t", len(parts), turnComplete))
}

func (c *Client) currentSession() Transport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) logEvent(kind, message string) {
	c.logger.Debug("live event", "type", kind, "message", message)
	c.events.Emit(EventLog, LogEntry{Date: time.Now(), Type: kind, Message: message})
}
