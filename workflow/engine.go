package workflow

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const RunTable = "workflow_runs"

const (
	RunRunning = "RUNNING"
	RunDone    = "DONE"
)

// Run is one suspended workflow instance. The step index is its program
// counter; everything else a step needs is either in the seed or re-read
// from authoritative storage when the step executes.
type Run struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	Kind   string `gorm:"size:40;index;not null" json:"kind"`
	Step   int    `gorm:"not null;default:0" json:"step"`
	Seed   []byte `gorm:"type:jsonb;not null" json:"seed"`
	Status string `gorm:"size:20;not null;default:'RUNNING'" json:"status"`

	WakeAt    time.Time `gorm:"index;not null" json:"wakeAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Run) TableName() string { return RunTable }

// Outcome tells the engine what to do once a step has completed.
type Outcome struct {
	Next  int           // step to resume at
	Delay time.Duration // how long to sleep first; zero wakes on the next tick
	Done  bool
}

// A Workflow resumes at a saved step and runs it to its next suspension
// point. Steps must be idempotent with respect to authoritative state: the
// engine guarantees at-least-once execution, not exactly-once.
type Workflow interface {
	Kind() string
	Step(ctx context.Context, seed []byte, step int, now time.Time) (Outcome, error)
}

// Engine drives suspended runs: a ticker polls for due rows, claims them
// with a row lock and executes one step at a time. A run consumes nothing
// while sleeping; killing the process loses no progress beyond the step in
// flight, which re-executes after restart.
type Engine struct {
	db        *gorm.DB
	interval  time.Duration
	now       func() time.Time
	workflows map[string]Workflow
	stop      chan struct{}
	done      chan struct{}
}

func NewEngine(db *gorm.DB, interval time.Duration) *Engine {
	return &Engine{
		db:        db,
		interval:  interval,
		now:       time.Now,
		workflows: make(map[string]Workflow),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (e *Engine) Register(w Workflow) { e.workflows[w.Kind()] = w }

// Enqueue persists a new run inside the caller's transaction, so starting a
// workflow commits or rolls back together with the state change that
// triggered it. The run wakes on the next tick.
func (e *Engine) Enqueue(tx *gorm.DB, kind string, seed any) (*Run, error) {
	b, err := jsoniter.ConfigFastest.Marshal(seed)
	if err != nil {
		return nil, err
	}
	run := &Run{
		ID:     uuid.NewString(),
		Kind:   kind,
		Seed:   b,
		Status: RunRunning,
		WakeAt: e.now(),
	}
	if err := tx.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (e *Engine) Start() {
	ticker := time.NewTicker(e.interval)
	go func() {
		defer close(e.done)
		defer ticker.Stop()
		e.Tick(context.Background())
		for {
			select {
			case <-ticker.C:
				e.Tick(context.Background())
			case <-e.stop:
				return
			}
		}
	}()
}

func (e *Engine) Close() {
	close(e.stop)
	<-e.done
}

// How far a failed step's wake-up is pushed back before it is retried.
const stepRetryBackoff = time.Minute

// Tick executes every due step once. Exposed so callers (and tests) can
// drain the queue without waiting for the ticker.
func (e *Engine) Tick(ctx context.Context) {
	for {
		advanced, err := e.runNext(ctx)
		if err != nil {
			// Claiming or checkpointing failed; the run stays due and is
			// retried on the next tick.
			log.Printf("workflow: tick: %v", err)
			return
		}
		if !advanced {
			return
		}
	}
}

func (e *Engine) runNext(ctx context.Context) (bool, error) {
	claimed := false
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var run Run
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND wake_at <= ?", RunRunning, e.now()).
			Order("wake_at").
			First(&run).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		claimed = true

		w, ok := e.workflows[run.Kind]
		if !ok {
			// Nothing registered for this kind; park the run instead of
			// waking it forever.
			log.Printf("workflow: no handler for kind %q, parking run %s", run.Kind, run.ID)
			return tx.Model(&run).Update("status", RunDone).Error
		}

		out, err := w.Step(ctx, run.Seed, run.Step, e.now())
		if err != nil {
			// Push the failing run back so the poller moves on to the
			// other due runs instead of re-claiming this one forever.
			log.Printf("workflow: run %s (%s) step %d failed: %v", run.ID, run.Kind, run.Step, err)
			return tx.Model(&run).Update("wake_at", e.now().Add(stepRetryBackoff)).Error
		}
		return tx.Model(&run).Updates(advance(out, e.now())).Error
	})
	return claimed, err
}

// advance maps a step outcome onto the run's row updates: terminal
// outcomes park the run, everything else saves the next step and wake-up.
func advance(out Outcome, now time.Time) map[string]any {
	if out.Done {
		return map[string]any{"status": RunDone}
	}
	return map[string]any{
		"step":    out.Next,
		"wake_at": now.Add(out.Delay),
	}
}
