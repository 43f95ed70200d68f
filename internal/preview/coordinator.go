package preview

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meridianswap/preview-engine/internal/amounts"
	"github.com/meridianswap/preview-engine/internal/assets"
	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/metrics"
	"github.com/meridianswap/preview-engine/internal/pricing"
)

// State is the coordinator's explicit lifecycle position. Every transition is
// made under the coordinator mutex; there are no implicit intermediate states.
type State uint8

const (
	StateIdle State = iota
	StateQueryingRemote
	StateQueryingFallback
	StateResolved
	StateNoRouteFound
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateQueryingRemote:
		return "QueryingRemote"
	case StateQueryingFallback:
		return "QueryingFallback"
	case StateResolved:
		return "Resolved"
	case StateNoRouteFound:
		return "NoRouteFound"
	case StateBlocked:
		return "Blocked"
	default:
		return "Unknown"
	}
}

// Side identifies which amount field the caller last edited. The focused side
// selects the trade type; the coordinator never computes both directions.
type Side uint8

const (
	SideSell Side = iota // exact input
	SideBuy              // exact output
)

// requestKey identifies one logical request. Responses are matched against
// the current key on arrival; a mismatch means a newer input superseded the
// request and the response is dropped. There is no hard cancellation.
type requestKey struct {
	sell      domain.AssetID
	buy       domain.AssetID
	amount    string
	tradeType domain.TradeType
}

// Snapshot is a point-in-time copy of the coordinator's observable state.
// Slippage bounds are derived at snapshot time from the resolved preview.
type Snapshot struct {
	State      State
	Pair       *assets.ResolvedPair
	Preview    *domain.SwapPreview
	MinimumOut *big.Int
	MaximumIn  *big.Int
	Reason     string
}

// Coordinator drives one interactive preview session: it owns the debounced
// input stream, the current request key, the state machine and the refresh
// timer. All methods are safe for concurrent use.
type Coordinator struct {
	resolver    *Resolver
	pairs       *assets.PairResolver
	refreshTTL  time.Duration
	slippageBps uint16

	mu           sync.Mutex
	deb          *amounts.Debouncer
	pair         *assets.ResolvedPair
	side         Side
	state        State
	reason       string
	preview      *domain.SwapPreview
	key          requestKey
	hasKey       bool
	refreshTimer *time.Timer
	updates      chan Snapshot
	closed       bool
}

func NewCoordinator(resolver *Resolver, pairs *assets.PairResolver, quiet, refreshTTL time.Duration, slippageBps uint16) *Coordinator {
	c := &Coordinator{
		resolver:    resolver,
		pairs:       pairs,
		refreshTTL:  refreshTTL,
		slippageBps: slippageBps,
		state:       StateIdle,
		updates:     make(chan Snapshot, 8),
	}
	c.deb = amounts.NewDebouncer(quiet, c.onQuiet)
	return c
}

// SetPair resolves a new sell/buy pair and resets the session. An
// unresolvable pair blocks the session until the next successful SetPair.
func (c *Coordinator) SetPair(ctx context.Context, sell, buy domain.AssetID) error {
	pair, err := c.pairs.Resolve(ctx, sell, buy)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("coordinator closed")
	}

	c.cancelRefreshLocked()
	c.preview = nil
	c.hasKey = false

	if err != nil {
		c.pair = nil
		c.state = StateBlocked
		c.reason = err.Error()
		c.publishLocked()
		return err
	}

	c.pair = pair
	c.state = StateIdle
	c.reason = ""
	c.publishLocked()
	return nil
}

// SetInput feeds one raw amount edit into the session. The value takes effect
// only after the quiet interval; intermediate edits are discarded.
func (c *Coordinator) SetInput(raw string, side Side) {
	c.mu.Lock()
	if c.closed || c.pair == nil {
		c.mu.Unlock()
		return
	}
	c.side = side
	c.mu.Unlock()

	c.deb.Input(raw)
}

// Flush forces any pending debounced input to take effect immediately.
func (c *Coordinator) Flush() {
	c.deb.Flush()
}

// Snapshot returns the current observable state with slippage bounds applied.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Updates delivers state change notifications. The channel is small and
// lossy under pressure: the latest snapshot wins, matching the preview
// semantics themselves.
func (c *Coordinator) Updates() <-chan Snapshot {
	return c.updates
}

func (c *Coordinator) Close() {
	c.deb.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancelRefreshLocked()
	close(c.updates)
}

// onQuiet runs on the debounce timer goroutine once an input survives the
// quiet interval.
func (c *Coordinator) onQuiet(raw string) {
	c.mu.Lock()
	if c.closed || c.pair == nil {
		c.mu.Unlock()
		return
	}
	pair := c.pair

	var decimals uint8
	var tradeType domain.TradeType
	if c.side == SideSell {
		decimals = pair.SellDecimals
		tradeType = domain.TradeExactInput
	} else {
		decimals = pair.BuyDecimals
		tradeType = domain.TradeExactOutput
	}

	amount, ok := amounts.Normalize(raw, decimals)
	if !ok || amount.Sign() == 0 {
		c.cancelRefreshLocked()
		c.hasKey = false
		c.preview = nil
		c.state = StateIdle
		c.reason = ""
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	key := requestKey{sell: pair.Sell, buy: pair.Buy, amount: amount.String(), tradeType: tradeType}
	c.key = key
	c.hasKey = true
	c.cancelRefreshLocked()
	c.state = StateQueryingRemote
	c.reason = ""
	c.publishLocked()
	c.mu.Unlock()

	go c.run(pair, amount, tradeType, key, false)
}

// run executes the source chain for one request key. refresh marks a silent
// background re-query: the session stays in Resolved and shows no
// intermediate states.
func (c *Coordinator) run(pair *assets.ResolvedPair, amount *big.Int, tradeType domain.TradeType, key requestKey, refresh bool) {
	ctx := context.Background()

	if !refresh {
		if p := c.resolver.cached(pair, amount, tradeType); p != nil {
			c.deliver(pair, amount, tradeType, key, p, nil, refresh)
			return
		}
	}

	p, err := c.resolver.fromRemote(ctx, pair, amount, tradeType)
	if err != nil && errors.Is(err, domain.ErrRouteUnavailable) {
		metrics.FallbackActivations.Inc()
		if !refresh {
			c.transition(key, StateQueryingFallback)
		}
		p, err = c.resolver.fromFallback(ctx, pair, amount, tradeType)
	}

	c.deliver(pair, amount, tradeType, key, p, err, refresh)
}

// deliver applies a finished query result, dropping it when the request key
// no longer matches the session's current key.
func (c *Coordinator) deliver(pair *assets.ResolvedPair, amount *big.Int, tradeType domain.TradeType, key requestKey, p *domain.SwapPreview, err error, refresh bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !c.hasKey || c.key != key {
		metrics.StalePreviewsDropped.Inc()
		c.mu.Unlock()
		return
	}

	if refresh {
		if err == nil {
			metrics.BackgroundRefreshes.WithLabelValues("ok").Inc()
			c.preview = p
			c.state = StateResolved
			c.reason = ""
			c.scheduleRefreshLocked(pair, amount, tradeType, key)
			c.publishLocked()
			c.mu.Unlock()
			return
		}

		// A failed refresh restarts the chain from the top, visibly this
		// time: the previously shown numbers can no longer be trusted.
		metrics.BackgroundRefreshes.WithLabelValues("error").Inc()
		log.Debug().Err(err).Msg("[previewCoordinator] background refresh failed, re-querying")
		c.preview = nil
		c.state = StateQueryingRemote
		c.reason = ""
		c.publishLocked()
		c.mu.Unlock()
		go c.run(pair, amount, tradeType, key, false)
		return
	}

	if err != nil {
		c.preview = nil
		c.state = StateNoRouteFound
		c.reason = err.Error()
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	c.preview = p
	c.state = StateResolved
	c.reason = ""
	c.scheduleRefreshLocked(pair, amount, tradeType, key)
	c.publishLocked()
	c.mu.Unlock()
}

func (c *Coordinator) transition(key requestKey, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.hasKey || c.key != key {
		return
	}
	c.state = state
	c.publishLocked()
}

func (c *Coordinator) scheduleRefreshLocked(pair *assets.ResolvedPair, amount *big.Int, tradeType domain.TradeType, key requestKey) {
	c.cancelRefreshLocked()
	c.refreshTimer = time.AfterFunc(c.refreshTTL, func() {
		c.mu.Lock()
		if c.closed || !c.hasKey || c.key != key {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		c.run(pair, amount, tradeType, key, true)
	})
}

func (c *Coordinator) cancelRefreshLocked() {
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
}

func (c *Coordinator) snapshotLocked() Snapshot {
	s := Snapshot{
		State:   c.state,
		Pair:    c.pair,
		Preview: c.preview,
		Reason:  c.reason,
	}
	if c.preview != nil {
		s.MinimumOut = pricing.MinimumOut(c.preview.AmountOut, c.slippageBps)
		s.MaximumIn = pricing.MaximumIn(c.preview.AmountIn, c.slippageBps)
	}
	return s
}

// publishLocked pushes the current snapshot without ever blocking the state
// machine: under pressure the oldest queued snapshot is displaced.
func (c *Coordinator) publishLocked() {
	snap := c.snapshotLocked()
	select {
	case c.updates <- snap:
	default:
		select {
		case <-c.updates:
		default:
		}
		select {
		case c.updates <- snap:
		default:
		}
	}
}
