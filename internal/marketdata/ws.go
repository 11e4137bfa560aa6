package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"btc-journal-lab/internal/observability"
)

// DefaultOKXWSURL is the OKX public WebSocket endpoint.
const DefaultOKXWSURL = "wss://ws.okx.com:8443/ws/v5/public"

// TickerConfig configures the live ticker subscriber.
type TickerConfig struct {
	// ReconnectDelay is initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for keepalive pings. OKX drops connections
	// idle for 30 seconds, so this must stay below that.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultTickerConfig returns the default ticker configuration.
func DefaultTickerConfig() TickerConfig {
	return TickerConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      20 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Tick is one live ticker update.
type Tick struct {
	InstID string
	Last   float64
	TsMs   int64
}

// TickerSubscriber keeps a live OKX ticker stream open for one instrument and
// caches the most recent price. It survives disconnects by reconnecting and
// resubscribing with exponential backoff.
type TickerSubscriber struct {
	endpoint string
	instID   string
	config   TickerConfig
	log      *zap.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	latest  atomic.Pointer[Tick]
	updates chan Tick
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewTickerSubscriber connects, subscribes to the tickers channel for instID
// and starts the read and keepalive loops.
func NewTickerSubscriber(ctx context.Context, endpoint, instID string, config *TickerConfig, log *zap.Logger) (*TickerSubscriber, error) {
	cfg := DefaultTickerConfig()
	if config != nil {
		cfg = *config
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &TickerSubscriber{
		endpoint: endpoint,
		instID:   instID,
		config:   cfg,
		log:      log,
		updates:  make(chan Tick, 256),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	s.wg.Add(1)
	go s.pingLoop()

	return s, nil
}

// Latest returns the most recent tick, nil before the first update arrives.
func (s *TickerSubscriber) Latest() *Tick {
	return s.latest.Load()
}

// Updates delivers every tick. The channel is buffered; on overflow the
// oldest update is dropped in favor of the newest, Latest stays correct.
func (s *TickerSubscriber) Updates() <-chan Tick {
	return s.updates
}

// Close shuts down the subscriber.
func (s *TickerSubscriber) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	close(s.updates)
	return nil
}

// connect dials the endpoint and sends the tickers subscribe request.
func (s *TickerSubscriber) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	sub := wsOp{
		Op: "subscribe",
		Args: []wsArg{{
			Channel: "tickers",
			InstID:  s.instID,
		}},
	}
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("write subscribe: %w", err)
	}

	s.conn = conn
	return nil
}

// readLoop reads messages and reconnects with backoff on failure.
func (s *TickerSubscriber) readLoop() {
	defer s.wg.Done()

	delay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			if !s.reconnect(delay) {
				return
			}
			delay *= 2
			if delay > s.config.MaxReconnectDelay {
				delay = s.config.MaxReconnectDelay
			}
			continue
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.log.Warn("ticker stream read failed", zap.Error(err))

			s.connMu.Lock()
			if s.conn != nil {
				s.conn.Close()
				s.conn = nil
			}
			s.connMu.Unlock()
			continue
		}

		delay = s.config.ReconnectDelay
		s.handleMessage(message)
	}
}

// reconnect waits, then dials and resubscribes. Returns false on shutdown.
func (s *TickerSubscriber) reconnect(delay time.Duration) bool {
	select {
	case <-s.done:
		return false
	case <-time.After(delay):
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	observability.RecordTickerReconnect()
	if err := s.connect(ctx); err != nil {
		s.log.Warn("ticker stream reconnect failed", zap.Error(err))
	}
	return true
}

func (s *TickerSubscriber) handleMessage(message []byte) {
	// OKX replies "pong" as a bare text frame.
	if string(message) == "pong" {
		return
	}

	var push struct {
		Event string `json:"event"`
		Msg   string `json:"msg"`
		Data  []struct {
			InstID string `json:"instId"`
			Last   string `json:"last"`
			Ts     string `json:"ts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(message, &push); err != nil {
		return
	}
	if push.Event == "error" {
		s.log.Warn("ticker stream error event", zap.String("msg", push.Msg))
		return
	}

	for _, row := range push.Data {
		last, err := strconv.ParseFloat(row.Last, 64)
		if err != nil {
			continue
		}
		tick := Tick{
			InstID: row.InstID,
			Last:   last,
			TsMs:   parseMs(row.Ts),
		}
		s.latest.Store(&tick)

		select {
		case s.updates <- tick:
		default:
			select {
			case <-s.updates:
			default:
			}
			select {
			case s.updates <- tick:
			default:
			}
		}
	}
}

// pingLoop sends OKX keepalive pings.
func (s *TickerSubscriber) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				// Failure here surfaces as a read error, the read loop
				// owns reconnection.
				s.conn.WriteMessage(websocket.TextMessage, []byte("ping"))
			}
			s.connMu.Unlock()
		}
	}
}

type wsOp struct {
	Op   string  `json:"op"`
	Args []wsArg `json:"args"`
}

type wsArg struct {
	Channel string `json:"channel"`
	InstID  string `json:"instId"`
}
