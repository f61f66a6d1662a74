package planner

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/roach88/scriptplan/internal/asset"
	"github.com/roach88/scriptplan/internal/store"
)

// BackoffFactory returns a fresh retry schedule for one asset.
type BackoffFactory func() backoff.BackOff

// ExponentialBackoff is the default retry schedule: 200ms doubling up to
// 5s between attempts.
func ExponentialBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0 // bounded by retry count instead
	return b
}

// WriteFailure records an asset whose annotations could not be persisted.
// The previous annotations stay in place until the next successful run.
type WriteFailure struct {
	AssetID  string `json:"asset_id"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error"`

	err error
}

// Unwrap returns the last write error.
func (f WriteFailure) Unwrap() error { return f.err }

// Result is the outcome of a planning run.
type Result struct {
	Plan     *Plan          `json:"plan"`
	Written  int            `json:"written"`
	Failures []WriteFailure `json:"failures"`
}

// Run computes the tenant's plan and writes the annotations back.
//
// If ctx is done before write-back starts nothing is written. Once
// write-back starts, every asset is attempted independently; failures are
// collected in Result.Failures. A non-nil error with a non-nil Result means
// ctx was cancelled during write-back.
func (p *Planner) Run(ctx context.Context, tenantID string) (*Result, error) {
	plan, err := p.Plan(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := p.writeBack(ctx, plan)

	p.logger.Info("annotations written",
		"tenant", tenantID,
		"written", res.Written,
		"failed", len(res.Failures),
	)

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("run %s: write-back interrupted: %w", tenantID, err)
	}
	return res, nil
}

func (p *Planner) writeBack(ctx context.Context, plan *Plan) *Result {
	var limiter *rate.Limiter
	if p.opts.WriteRate > 0 {
		burst := max(1, int(math.Ceil(p.opts.WriteRate)))
		limiter = rate.NewLimiter(rate.Limit(p.opts.WriteRate), burst)
	}

	var (
		written    atomic.Int64
		failuresMu sync.Mutex
		failures   []WriteFailure
	)

	workChan := make(chan Step, len(plan.Steps))
	for _, s := range plan.Steps {
		workChan <- s
	}
	close(workChan)

	var wg sync.WaitGroup
	for i := 0; i < min(p.opts.WriteConcurrency, max(1, len(plan.Steps))); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for s := range workChan {
				attempts, err := p.writeOne(ctx, limiter, plan.TenantID, s.AssetID, plan.annotations(s))
				if err != nil {
					p.logger.Error("annotation write failed",
						"worker", workerID,
						"tenant", plan.TenantID,
						"asset_id", s.AssetID,
						"attempts", attempts,
						"error", err,
					)
					failuresMu.Lock()
					failures = append(failures, WriteFailure{
						AssetID:  s.AssetID,
						Attempts: attempts,
						Error:    err.Error(),
						err:      err,
					})
					failuresMu.Unlock()
					continue
				}
				written.Add(1)
			}
		}(i)
	}
	wg.Wait()

	// Workers finish in any order; report failures in plan order.
	position := make(map[string]int, len(plan.Steps))
	for _, s := range plan.Steps {
		position[s.AssetID] = s.Position
	}
	sortFailures(failures, position)
	if failures == nil {
		failures = []WriteFailure{}
	}

	return &Result{Plan: plan, Written: int(written.Load()), Failures: failures}
}

// writeOne persists one asset's annotations with retry. It returns the
// number of attempts made.
func (p *Planner) writeOne(ctx context.Context, limiter *rate.Limiter, tenantID, id string, ann asset.Annotations) (int, error) {
	attempts := 0
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		attempts++
		err := p.store.UpdateAnnotations(ctx, id, ann)
		if errors.Is(err, store.ErrNotFound) {
			// Deleted since the snapshot; retrying cannot help.
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(p.opts.Backoff(), uint64(p.opts.WriteRetries)), ctx)
	notify := func(err error, next time.Duration) {
		p.logger.Warn("annotation write retry",
			"tenant", tenantID,
			"asset_id", id,
			"attempt", attempts,
			"next", next,
			"error", err,
		)
	}

	return attempts, backoff.RetryNotify(op, b, notify)
}

func sortFailures(failures []WriteFailure, position map[string]int) {
	slices.SortFunc(failures, func(a, b WriteFailure) int {
		return cmp.Compare(position[a.AssetID], position[b.AssetID])
	})
}
