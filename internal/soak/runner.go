package soak

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"
)

// Config controls a randomized soak run. A run is fully determined by its
// config: same seed, same operation sequence.
type Config struct {
	Seed       int64
	Ops        int
	Capacity   int
	EraseBias  float64 // chance an op erases when the pool is non-empty
	CheckEvery int     // full property check every N ops (0 = final check only)
}

// Runner drives random insert/erase traffic against a pool and its shadow
// model, verifying the pool's observable properties as it goes.
type Runner struct {
	cfg Config
	log *zap.Logger
}

func NewRunner(cfg Config, log *zap.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Run executes the workload. It always returns the trace of operations that
// were executed, so a failing run can be saved and replayed; the error is
// the first property violation, or nil for a clean run.
func (r *Runner) Run() (*Trace, error) {
	rng := rand.New(rand.NewSource(r.cfg.Seed))
	s := newSession(r.cfg.Capacity)
	tr := &Trace{Capacity: r.cfg.Capacity, Seed: r.cfg.Seed}

	r.log.Info("soak start",
		zap.Int64("seed", r.cfg.Seed),
		zap.Int("ops", r.cfg.Ops),
		zap.Int("capacity", r.cfg.Capacity),
		zap.Float64("erase_bias", r.cfg.EraseBias))

	for i := 0; i < r.cfg.Ops; i++ {
		erase := len(s.live) > 0 &&
			(s.pool.Len() == s.pool.Cap() || rng.Float64() < r.cfg.EraseBias)

		var err error
		if erase {
			n := rng.Intn(len(s.live))
			tr.Ops = append(tr.Ops, Op{Kind: OpErase, Nth: n})
			err = s.eraseNth(n)
		} else {
			v := rng.Uint64()
			tr.Ops = append(tr.Ops, Op{Kind: OpInsert, Value: v})
			err = s.insert(v)
		}
		if err != nil {
			return tr, fmt.Errorf("op %d: %w", i, err)
		}

		if r.cfg.CheckEvery > 0 && (i+1)%r.cfg.CheckEvery == 0 {
			tr.Ops = append(tr.Ops, Op{Kind: OpCheck})
			if err := s.check(); err != nil {
				return tr, fmt.Errorf("check after op %d: %w", i, err)
			}
			r.log.Debug("checkpoint",
				zap.Int("op", i+1),
				zap.Int("live", s.pool.Len()))
		}
	}

	tr.Ops = append(tr.Ops, Op{Kind: OpCheck})
	if err := s.check(); err != nil {
		return tr, fmt.Errorf("final check: %w", err)
	}

	r.log.Info("soak clean",
		zap.Int("ops", r.cfg.Ops),
		zap.Int("live", s.pool.Len()))
	return tr, nil
}
