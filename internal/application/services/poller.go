package services

import (
	"context"
	"sync"
	"time"

	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

// searcher is the slice of SearchService the poller needs.
type searcher interface {
	Search(ctx context.Context, filter *entities.SearchFilter) ([]entities.FacilityTeeTimes, error)
}

// Snapshot is one published live-search state. On a failed poll the
// previous results are kept and Stale is set; the session degrades, it
// does not error out.
type Snapshot struct {
	Results   []entities.FacilityTeeTimes `json:"results"`
	Seq       uint64                      `json:"seq"`
	Loading   bool                        `json:"loading"`
	Stale     bool                        `json:"stale"`
	Error     string                      `json:"error,omitempty"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// Poller owns one live search session: an immediate fetch on start and on
// every filter change, then a fixed-interval re-poll. Exactly one ticker
// exists at any time; a filter change replaces it.
type Poller struct {
	search   searcher
	interval time.Duration
	metrics  *observability.Metrics

	mu       sync.Mutex
	filter   entities.SearchFilter
	snapshot Snapshot
	issued   uint64
	applied  uint64

	restart chan struct{}
	updates chan Snapshot
}

// NewPoller creates a poller for the given initial filter.
func NewPoller(search searcher, filter entities.SearchFilter, interval time.Duration, metrics *observability.Metrics) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Poller{
		search:   search,
		interval: interval,
		metrics:  metrics,
		filter:   filter,
		restart:  make(chan struct{}, 1),
		updates:  make(chan Snapshot, 8),
	}
}

// Updates delivers a snapshot per applied poll. Slow consumers miss
// intermediate snapshots, never the latest ordering.
func (p *Poller) Updates() <-chan Snapshot {
	return p.updates
}

// Run polls until ctx is cancelled. The ticker is released on every exit
// path.
func (p *Poller) Run(ctx context.Context) {
	p.dispatch(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.dispatch(ctx)
		case <-p.restart:
			ticker.Stop()
			ticker = time.NewTicker(p.interval)
			p.dispatch(ctx)
		}
	}
}

// SetFilter swaps the filter, tears down the current interval and
// triggers an immediate re-poll.
func (p *Poller) SetFilter(filter entities.SearchFilter) {
	p.mu.Lock()
	p.filter = filter
	p.mu.Unlock()

	select {
	case p.restart <- struct{}{}:
	default:
	}
}

// dispatch issues one tagged fetch. The request runs detached; an
// in-flight fetch is never cancelled by a newer trigger, it is discarded
// on arrival if something newer already applied.
func (p *Poller) dispatch(ctx context.Context) {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	filter := p.filter
	p.snapshot.Loading = true
	p.publishLocked()
	p.mu.Unlock()

	go func() {
		results, err := p.search.Search(ctx, &filter)
		p.apply(ctx, seq, filter.City, results, err)
	}()
}

// apply installs a fetch result, guarded by the request sequence:
// results land in issue order, a late stale response never overwrites a
// newer one.
func (p *Poller) apply(ctx context.Context, seq uint64, city string, results []entities.FacilityTeeTimes, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq < p.applied {
		return
	}
	p.applied = seq

	// Clear the in-flight flag only when this is the newest issued
	// request; an older completion must not hide a newer spinner.
	if seq == p.issued {
		p.snapshot.Loading = false
	}

	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("city", city).
			Uint64("seq", seq).
			Msg("poll failed, keeping previous results")
		p.snapshot.Stale = true
		p.snapshot.Error = string(apperrors.ErrorTypeUpstream)
	} else {
		p.snapshot.Results = results
		p.snapshot.Stale = false
		p.snapshot.Error = ""
	}

	p.snapshot.Seq = seq
	p.snapshot.UpdatedAt = time.Now()
	p.publishLocked()

	observability.RecordPollMetric(ctx, p.metrics, city, err != nil)
}

// publishLocked pushes the current snapshot without blocking; the oldest
// queued snapshot is dropped when the consumer lags.
func (p *Poller) publishLocked() {
	snap := p.snapshot
	for {
		select {
		case p.updates <- snap:
			return
		default:
			select {
			case <-p.updates:
			default:
			}
		}
	}
}
