package transport

import (
	"sync"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/time/rate"

	"cstyle/internal/shared/observability"
)

// idleBudget is how long a method's budget is kept after its last request.
const idleBudget = 10 * time.Minute

// Gate sheds request floods with one token bucket per method, so a burst of
// one kind of request cannot starve the others. Lifecycle requests and
// notifications always pass: dropping a didChange would desynchronize the
// document.
type Gate struct {
	perSecond rate.Limit
	burst     int
	now       func() time.Time

	mu        sync.Mutex
	methods   map[string]*methodBudget
	lastSweep time.Time
}

type methodBudget struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewGate allows perMinute requests per method with the given burst. A
// non-positive rate disables limiting and returns nil, which admits
// everything.
func NewGate(perMinute, burst int) *Gate {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &Gate{
		perSecond: rate.Limit(float64(perMinute) / 60),
		burst:     burst,
		now:       time.Now,
		methods:   make(map[string]*methodBudget),
	}
}

var alwaysAdmitted = map[string]bool{
	protocol.MethodInitialize: true,
	protocol.MethodShutdown:   true,
	protocol.MethodExit:       true,
}

// Admit reports whether a request may be served now.
func (g *Gate) Admit(method string, notification bool) bool {
	if g == nil || notification || alwaysAdmitted[method] {
		return true
	}
	if g.take(method) {
		return true
	}
	observability.RateLimitedTotal.Inc()
	return false
}

func (g *Gate) take(method string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.lastSweep) > idleBudget {
		g.sweep(now)
	}
	b, ok := g.methods[method]
	if !ok {
		b = &methodBudget{limiter: rate.NewLimiter(g.perSecond, g.burst)}
		g.methods[method] = b
	}
	b.lastUsed = now
	return b.limiter.AllowN(now, 1)
}

// sweep drops budgets idle for longer than idleBudget. Sweeping happens on
// the request path, so an idle session holds no timer.
func (g *Gate) sweep(now time.Time) {
	for method, b := range g.methods {
		if now.Sub(b.lastUsed) > idleBudget {
			delete(g.methods, method)
		}
	}
	g.lastSweep = now
}
