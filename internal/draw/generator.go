// Package draw produces period draw results: a random permutation of 1..10,
// optionally biased by the active win/loss control policy. Every generation
// path validates its output as a true permutation and falls back to the
// unbiased shuffle rather than emit invalid state.
package draw

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/logger"
	"github.com/spinworks/draw10/internal/metrics"
)

// Generator produces draw results. Safe for concurrent use.
type Generator struct {
	mu                  sync.Mutex
	rng                 *rand.Rand
	autoDetectThreshold int64 // aggregate unsettled stake in cents that arms auto-detect
}

// NewGenerator creates a generator seeded from the wall clock.
func NewGenerator(autoDetectThreshold int64) *Generator {
	return NewGeneratorWithSeed(time.Now().UnixNano(), autoDetectThreshold)
}

// NewGeneratorWithSeed creates a generator with a fixed seed, for tests.
func NewGeneratorWithSeed(seed int64, autoDetectThreshold int64) *Generator {
	return &Generator{
		rng:                 rand.New(rand.NewSource(seed)), //nolint:gosec
		autoDetectThreshold: autoDetectThreshold,
	}
}

// Generate produces the draw result for a period. The policy may be nil or
// inactive, in which case the result is an unbiased shuffle. Biased paths are
// heuristics: they attempt the bias, verify the permutation invariant, and
// fall back to the unbiased shuffle on any violation.
func (g *Generator) Generate(ctx context.Context, period domain.PeriodID, policy *domain.ControlPolicy, exposure *domain.ExposureSummary) domain.DrawResult {
	log := logger.FromContext(ctx)

	mode := domain.ControlModeNormal
	if policy.AppliesTo(period) {
		mode = policy.Mode
	}

	var result domain.DrawResult
	switch mode {
	case domain.ControlModeAutoDetect:
		result = g.generateAutoDetect(exposure)
	case domain.ControlModeSingleTarget:
		result = g.generateTargeted(policy, exposure)
	case domain.ControlModeAgentLine:
		// Agent-line biasing has no defined algorithm; the mode is accepted
		// and falls through to an unbiased draw.
		result = g.shuffle()
	default:
		result = g.shuffle()
	}

	if err := result.Validate(); err != nil {
		log.Warn(LogMsgBiasedResultInvalid, "period", period, "mode", mode, "error", err)
		metrics.DrawFallbacks.WithLabelValues(string(mode)).Inc()
		result = g.shuffle()
	}

	metrics.DrawsGenerated.WithLabelValues(string(mode)).Inc()
	log.Info(LogMsgDrawGenerated, "period", period, "mode", mode, "result", result.String())
	return result
}

// shuffle returns a uniform-random permutation of 1..10.
func (g *Generator) shuffle() domain.DrawResult {
	var r domain.DrawResult
	for i := range r {
		r[i] = i + 1
	}
	g.mu.Lock()
	g.rng.Shuffle(domain.PositionCount, func(i, j int) {
		r[i], r[j] = r[j], r[i]
	})
	g.mu.Unlock()
	return r
}

func (g *Generator) chance(p float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64() < p
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}
