package source

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/donorpulse/internal/model"
)

// ErrNoSourceAvailable is returned when every source in a chain is either
// cooling down or failed the current call.
var ErrNoSourceAvailable = eris.New("no campaign source available")

// DefaultCooldown is how long a failed source is skipped before it is
// probed again.
const DefaultCooldown = 2 * time.Minute

// Chain tries sources in order and returns the first successful roster.
// A source that fails is placed in a cooldown and skipped until the
// cooldown expires, so a flapping CRM does not stall every request.
type Chain struct {
	sources  []Source
	cooldown time.Duration

	mu        sync.Mutex
	downUntil map[string]time.Time

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// NewChain builds a chain over the given sources. A cooldown <= 0 uses
// DefaultCooldown.
func NewChain(cooldown time.Duration, sources ...Source) *Chain {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Chain{
		sources:   sources,
		cooldown:  cooldown,
		downUntil: make(map[string]time.Time),
		nowFunc:   time.Now,
	}
}

// Name implements Source.
func (ch *Chain) Name() string {
	names := make([]string, len(ch.sources))
	for i, s := range ch.sources {
		names[i] = s.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// ListCampaigns implements Source. Sources are tried in order; the first
// success wins and clears that source's cooldown.
func (ch *Chain) ListCampaigns(ctx context.Context, clientID string) ([]model.Campaign, error) {
	var errs []string
	for _, s := range ch.sources {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "source chain")
		}
		if !ch.allow(s.Name()) {
			errs = append(errs, s.Name()+": cooling down")
			continue
		}

		campaigns, err := s.ListCampaigns(ctx, clientID)
		if err != nil {
			ch.trip(s.Name())
			zap.L().Warn("campaign source failed",
				zap.String("source", s.Name()),
				zap.Duration("cooldown", ch.cooldown),
				zap.Error(err),
			)
			errs = append(errs, s.Name()+": "+err.Error())
			continue
		}

		ch.clear(s.Name())
		return campaigns, nil
	}
	return nil, eris.Wrap(ErrNoSourceAvailable, strings.Join(errs, "; "))
}

// Down reports the sources currently in cooldown and when each expires.
func (ch *Chain) Down() map[string]time.Time {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	now := ch.nowFunc()
	down := make(map[string]time.Time)
	for name, until := range ch.downUntil {
		if until.After(now) {
			down[name] = until
		}
	}
	return down
}

func (ch *Chain) allow(name string) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	until, ok := ch.downUntil[name]
	if !ok {
		return true
	}
	return !until.After(ch.nowFunc())
}

func (ch *Chain) trip(name string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.downUntil[name] = ch.nowFunc().Add(ch.cooldown)
}

func (ch *Chain) clear(name string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	delete(ch.downUntil, name)
}
