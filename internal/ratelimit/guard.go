package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Outcome labels passed to the observe hook
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Rejection is the JSON body sent with a 429.
type Rejection struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Result is what the guard decided for one request.
type Result struct {
	IP       string
	Decision Decision
	// Err is set when the store could not be consulted
	Err error
	// Proceed reports whether the wrapped handler should run
	Proceed bool
}

// Guard applies a FixedWindowLimiter to HTTP requests keyed by client IP.
type Guard struct {
	limiter  *FixedWindowLimiter
	failOpen bool
	logger   *zap.Logger
	observe  func(outcome string)
	now      Clock
}

type GuardOption func(*Guard)

// WithFailOpen lets requests through when the store is unavailable.
// The default rejects them with a 500.
func WithFailOpen(failOpen bool) GuardOption {
	return func(g *Guard) {
		g.failOpen = failOpen
	}
}

func WithLogger(logger *zap.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// WithObserver sets a callback invoked once per request with the outcome.
// Used for prometheus counters.
func WithObserver(fn func(outcome string)) GuardOption {
	return func(g *Guard) {
		g.observe = fn
	}
}

func WithGuardClock(clock Clock) GuardOption {
	return func(g *Guard) {
		g.now = clock
	}
}

func NewGuard(limiter *FixedWindowLimiter, opts ...GuardOption) *Guard {
	g := &Guard{
		limiter: limiter,
		logger:  zap.NewNop(),
		observe: func(string) {},
		now:     time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Check counts r against its client's window.
func (g *Guard) Check(r *http.Request) Result {
	ip := ClientIP(r)

	decision, err := g.limiter.Allow(r.Context(), ip)
	if err != nil {
		g.observe(OutcomeError)
		g.logger.Warn("rate limit store unavailable",
			zap.String("ip", ip),
			zap.Bool("fail_open", g.failOpen),
			zap.Error(err),
		)
		return Result{IP: ip, Err: err, Proceed: g.failOpen}
	}

	if !decision.Allowed {
		g.observe(OutcomeRejected)
		// only the first rejection in a window is logged
		if decision.Count == decision.Limit+1 {
			g.logger.Info("rate limit exceeded",
				zap.String("ip", ip),
				zap.Int("limit", decision.Limit),
				zap.Time("reset_at", decision.ResetAt),
			)
		}
		return Result{IP: ip, Decision: decision}
	}

	g.observe(OutcomeAllowed)
	return Result{IP: ip, Decision: decision, Proceed: true}
}

// SetHeaders writes the X-RateLimit-* headers, plus Retry-After when the
// request was rejected. Nothing is written when the store failed.
func (g *Guard) SetHeaders(h http.Header, res Result) {
	if res.Err != nil {
		return
	}

	d := res.Decision
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

	if !d.Allowed {
		retryAfter := int(math.Ceil(d.ResetAt.Sub(g.now()).Seconds()))
		if retryAfter < 0 {
			retryAfter = 0
		}
		h.Set("Retry-After", strconv.Itoa(retryAfter))
	}
}

func (g *Guard) Rejection() Rejection {
	return Rejection{
		Error:  "Rate limit exceeded",
		Detail: g.limiter.Detail(),
	}
}

// Wrap returns next guarded by the limiter. Rejected requests get a 429
// JSON body and never reach next.
func (g *Guard) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := g.Check(r)
		g.SetHeaders(w.Header(), res)

		if !res.Proceed {
			if res.Err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Rate limit check failed"})
				return
			}
			writeJSON(w, http.StatusTooManyRequests, g.Rejection())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
