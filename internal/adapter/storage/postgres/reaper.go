package postgres

import (
	"context"
	"time"
)

func (p *Pool) runReaper() {
	defer close(p.reaperDone)

	ticker := time.NewTicker(p.cfg.ValidationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.closeCtx.Done():
			return
		case <-ticker.C:
			p.reap(p.closeCtx)
		}
	}
}

// reap closes idle connections past MaxIdleTime (never going below
// MinActive) or past MaxLifetime, then tops the pool back up to MinActive.
func (p *Pool) reap(ctx context.Context) {
	now := p.now()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	open := len(p.idle) + len(p.leased)
	kept := make([]*PooledConn, 0, len(p.idle))
	var victims []*PooledConn
	for _, c := range p.idle {
		if c.lifetimeExceeded(now, p.cfg.MaxLifetime) ||
			(open > p.cfg.MinActive && c.idleExceeded(now, p.cfg.MaxIdleTime)) {
			victims = append(victims, c)
			open--
			continue
		}
		kept = append(kept, c)
	}
	p.idle = kept
	p.mu.Unlock()

	for _, c := range victims {
		p.closeConn(c)
	}
	if len(victims) > 0 {
		p.log.Debug().Int("closed", len(victims)).Int("open", open).Msg("reaped idle connections")
	}

	if err := p.fill(ctx); err != nil && ctx.Err() == nil {
		p.log.Warn().Err(err).Msg("failed to restore minimum pool size")
	}
}
