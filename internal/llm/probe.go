package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/filesort/internal/cache"
)

// probeResult is what a capability probe learned, including failure
type probeResult struct {
	models []string
	err    error
}

// Prober answers "is the service up, and does it serve model X?"
// Results, failures included, are cached for the configured TTL so a batch
// run against a stopped service does not pay the probe timeout per file.
type Prober struct {
	client  Client
	cache   cache.Cache[probeResult]
	key     string
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger

	mu sync.Mutex // one probe in flight at a time
}

// NewProber creates a prober over client. A zero ttl disables caching.
func NewProber(client Client, timeout, ttl time.Duration, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := ""
	if client != nil {
		name = client.Name()
	}
	return &Prober{
		client:  client,
		cache:   cache.NewMemoryCache[probeResult](ttl, 2*ttl+time.Minute),
		key:     cache.Key("models", name),
		ttl:     ttl,
		timeout: timeout,
		logger:  logger,
	}
}

// Models returns the advertised model names
func (p *Prober) Models(ctx context.Context) ([]string, error) {
	if p.client == nil {
		return nil, fmt.Errorf("%w: no inference provider configured", ErrUnavailable)
	}

	if res, ok := p.cached(); ok {
		return res.models, res.err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// another caller may have probed while we waited
	if res, ok := p.cached(); ok {
		return res.models, res.err
	}

	probeCtx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	models, err := p.client.ListModels(probeCtx)
	if err != nil {
		// a cancelled caller says nothing about the service
		if ctx.Err() != nil {
			return nil, err
		}
		p.logger.Debug("inference service probe failed", zap.String("provider", p.client.Name()), zap.Error(err))
	} else {
		p.logger.Debug("inference service probed", zap.String("provider", p.client.Name()), zap.Strings("models", models))
	}

	if p.ttl > 0 {
		p.cache.Set(p.key, probeResult{models: models, err: err}, p.ttl)
	}
	return models, err
}

// HasModel reports whether name is served.
// A name with a ":tag" must match exactly; a bare name matches any tag of it.
func (p *Prober) HasModel(ctx context.Context, name string) (bool, error) {
	models, err := p.Models(ctx)
	if err != nil {
		return false, err
	}
	return MatchModel(models, name), nil
}

// Available reports whether the service answered the last probe
func (p *Prober) Available(ctx context.Context) bool {
	_, err := p.Models(ctx)
	return err == nil
}

// Invalidate drops the cached probe result
func (p *Prober) Invalidate() {
	p.cache.Delete(p.key)
}

func (p *Prober) cached() (probeResult, bool) {
	if p.ttl <= 0 {
		return probeResult{}, false
	}
	return p.cache.Get(p.key)
}

// MatchModel reports whether name is among the listed model names
func MatchModel(listed []string, name string) bool {
	if name == "" {
		return false
	}
	tagged := strings.Contains(name, ":")

	for _, m := range listed {
		if m == name {
			return true
		}
		if tagged {
			continue
		}
		if base, _, _ := strings.Cut(m, ":"); base == name {
			return true
		}
	}
	return false
}
