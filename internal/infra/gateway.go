package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Authorization channels. Mobile-money networks are materially slower and
// less reliable than card rails; the simulated gateway models that.
const (
	ChannelCard   = "card"
	ChannelMobile = "mobile"
)

// AuthorizationRequest is sent to the payment gateway. Reference is the card
// token or the masked phone number - never raw card data.
type AuthorizationRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Channel   string          `json:"channel"`
}

// AuthorizationResult is the gateway's terminal answer for one attempt.
// A decline (Approved=false) is a normal business outcome, not an error;
// errors are reserved for transport failures and timeouts.
type AuthorizationResult struct {
	Approved      bool   `json:"approved"`
	TransactionID string `json:"transaction_id"`
	DeclineReason string `json:"decline_reason,omitempty"`
}

// Gateway is the external payment-authorization service. It is pluggable so
// the simulated implementation can be replaced by a network client (or a
// deterministic test double) without touching the payment processor.
type Gateway interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (*AuthorizationResult, error)
}

// ── Simulated gateway ─────────────────────────────────────────────────────────

var declineReasons = []string{
	"insufficient funds",
	"card declined by issuer",
	"transaction limit exceeded",
	"network error at acquirer",
}

// SimulatedGateway approves card authorizations 95% of the time after
// 200–800ms and mobile authorizations 90% of the time after 1–4s. The rand
// source and sleep hook are injectable so tests stay deterministic and fast.
type SimulatedGateway struct {
	mu    sync.Mutex
	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSimulatedGateway(seed int64) *SimulatedGateway {
	return &SimulatedGateway{
		rng:   rand.New(rand.NewSource(seed)),
		sleep: sleepCtx,
	}
}

// WithSleep replaces the latency hook (used by tests to skip real waits).
func (g *SimulatedGateway) WithSleep(fn func(ctx context.Context, d time.Duration) error) *SimulatedGateway {
	g.sleep = fn
	return g
}

func (g *SimulatedGateway) Authorize(ctx context.Context, req AuthorizationRequest) (*AuthorizationResult, error) {
	g.mu.Lock()
	var latency time.Duration
	var approveRoll, reasonRoll float64
	switch req.Channel {
	case ChannelMobile:
		latency = time.Second + time.Duration(g.rng.Int63n(int64(3*time.Second)))
	default:
		latency = 200*time.Millisecond + time.Duration(g.rng.Int63n(int64(600*time.Millisecond)))
	}
	approveRoll = g.rng.Float64()
	reasonRoll = g.rng.Float64()
	g.mu.Unlock()

	if err := g.sleep(ctx, latency); err != nil {
		return nil, err
	}

	threshold := 0.95
	if req.Channel == ChannelMobile {
		threshold = 0.90
	}
	if approveRoll >= threshold {
		return &AuthorizationResult{
			Approved:      false,
			DeclineReason: declineReasons[int(reasonRoll*float64(len(declineReasons)))%len(declineReasons)],
		}, nil
	}
	return &AuthorizationResult{
		Approved:      true,
		TransactionID: "sim-" + uuid.NewString(),
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ── HTTP gateway ──────────────────────────────────────────────────────────────

// HTTPGateway delegates authorization to a real acquirer endpoint.
type HTTPGateway struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGateway) Authorize(ctx context.Context, authReq AuthorizationRequest) (*AuthorizationResult, error) {
	body, err := json.Marshal(authReq)
	if err != nil {
		return nil, fmt.Errorf("gateway: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/authorize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway: returned %d", resp.StatusCode)
	}

	var result AuthorizationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("gateway: decode response: %w", err)
	}
	return &result, nil
}

// ── Circuit-breaker wrapper ───────────────────────────────────────────────────

// BreakerGateway guards a Gateway with a circuit breaker so a downed acquirer
// fast-fails instead of stacking up blocked requests.
type BreakerGateway struct {
	inner Gateway
	cb    *CircuitBreaker
}

func NewBreakerGateway(inner Gateway, cb *CircuitBreaker) *BreakerGateway {
	return &BreakerGateway{inner: inner, cb: cb}
}

func (g *BreakerGateway) Authorize(ctx context.Context, req AuthorizationRequest) (*AuthorizationResult, error) {
	var result *AuthorizationResult
	err := g.cb.Execute(func() error {
		r, err := g.inner.Authorize(ctx, req)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
