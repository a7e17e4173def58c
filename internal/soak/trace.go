package soak

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// OpKind names one recorded operation.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpErase  OpKind = "erase"
	OpCheck  OpKind = "check"
)

// Op is one step of a recorded workload. Erase targets are recorded as an
// index into the session's live-handle list rather than a raw handle, so a
// trace replays identically regardless of what handles the pool issues.
type Op struct {
	Kind  OpKind `yaml:"op"`
	Value uint64 `yaml:"value,omitempty"`
	Nth   int    `yaml:"nth,omitempty"`
}

// Trace is a replayable workload recording.
type Trace struct {
	Capacity int   `yaml:"capacity"`
	Seed     int64 `yaml:"seed,omitempty"`
	Ops      []Op  `yaml:"ops"`
}

// Save writes the trace as YAML.
func (t *Trace) Save(path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	return nil
}

// LoadTrace reads a YAML trace file.
func LoadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace %s: %w", path, err)
	}
	var t Trace
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse trace %s: %w", path, err)
	}
	return &t, nil
}

// Replay applies a recorded trace against a fresh pool and model, running
// the same property checks the original run did.
func Replay(t *Trace, log *zap.Logger) error {
	if t.Capacity < 0 || t.Capacity >= 1<<16 {
		return fmt.Errorf("trace capacity %d out of range", t.Capacity)
	}
	s := newSession(t.Capacity)
	for i, op := range t.Ops {
		var err error
		switch op.Kind {
		case OpInsert:
			err = s.insert(op.Value)
		case OpErase:
			err = s.eraseNth(op.Nth)
		case OpCheck:
			err = s.check()
		default:
			err = fmt.Errorf("unknown op kind %q", op.Kind)
		}
		if err != nil {
			return fmt.Errorf("trace op %d (%s): %w", i, op.Kind, err)
		}
	}
	if err := s.check(); err != nil {
		return fmt.Errorf("final check: %w", err)
	}
	log.Info("replay clean",
		zap.Int("ops", len(t.Ops)),
		zap.Int("capacity", t.Capacity))
	return nil
}
