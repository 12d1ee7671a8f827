// Package scheduler runs periodic tasks on cron schedules, fixed
// intervals, or event triggers, invoking a named function registered by
// the daemon at boot.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/agentcore/runtime/internal/events"
)

// DefaultCooldown is the minimum interval between two triggers of the same task.
const DefaultCooldown = 60 * time.Second

// TaskFunc is a registered periodic-task handler.
type TaskFunc func(ctx context.Context) error

// Config holds the scheduler's dependencies.
type Config struct {
	Bus   *events.Bus
	Store *TaskStore // nil-safe: entries are not persisted without a store
	Funcs map[string]TaskFunc
}

type runtimeEntry struct {
	id          string
	name        string
	taskFunc    string
	skillName   string
	cron        *CronExpr
	intervalSec int
	onEvent     *EventTrigger
	cooldown    time.Duration
	maxRuns     int
	runCount    int
	enabled     bool
	lastRun     time.Time
}

// Scheduler manages cron-based, interval-based, and event-triggered task execution.
type Scheduler struct {
	bus   *events.Bus
	store *TaskStore
	funcs map[string]TaskFunc

	mu      sync.Mutex
	entries map[string]*runtimeEntry

	done        chan struct{}
	unsubscribe func()
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		bus:     cfg.Bus,
		store:   cfg.Store,
		funcs:   cfg.Funcs,
		entries: make(map[string]*runtimeEntry),
		done:    make(chan struct{}),
	}
}

// Start loads persisted entries and begins the cron/interval tickers and
// event subscription.
func (s *Scheduler) Start() {
	s.loadPersistedEntries()
	slog.Info("scheduler started", "entries", len(s.entries))

	s.unsubscribe = s.bus.Subscribe(s.handleEvent)
	go s.cronLoop()
	go s.intervalLoop()
}

// Stop halts the scheduler's loops and event subscription.
func (s *Scheduler) Stop() {
	close(s.done)
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	slog.Info("scheduler stopped")
}

// AddTask registers a periodic task at runtime.
func (s *Scheduler) AddTask(pt *PeriodicTask) error {
	if pt.CronSpec == "" && pt.IntervalSec == 0 && pt.OnEvent == nil {
		return fmt.Errorf("periodic task must have a cron, interval, or on_event trigger")
	}
	if pt.IntervalSec > 0 && pt.IntervalSec < 5 {
		return fmt.Errorf("interval must be at least 5 seconds")
	}
	if _, ok := s.funcs[pt.TaskFunc]; !ok {
		return fmt.Errorf("unregistered task function: %s", pt.TaskFunc)
	}

	if pt.ID == "" {
		pt.ID = GenerateTaskID()
	}

	re := &runtimeEntry{
		id:          pt.ID,
		name:        pt.Name,
		taskFunc:    pt.TaskFunc,
		skillName:   pt.SkillName,
		intervalSec: pt.IntervalSec,
		onEvent:     pt.OnEvent,
		cooldown:    time.Duration(pt.CooldownSec) * time.Second,
		maxRuns:     pt.MaxRuns,
		runCount:    pt.RunCount,
		enabled:     pt.Enabled,
	}

	if pt.CronSpec != "" {
		expr, err := ParseCron(pt.CronSpec)
		if err != nil {
			return fmt.Errorf("parse cron: %w", err)
		}
		re.cron = expr
	}
	if re.cooldown == 0 {
		re.cooldown = DefaultCooldown
	}

	if s.store != nil {
		if err := s.store.Create(pt); err != nil {
			return fmt.Errorf("persist task: %w", err)
		}
	}

	s.mu.Lock()
	s.entries[pt.ID] = re
	s.mu.Unlock()

	slog.Info("scheduler: added task", "id", pt.ID, "name", pt.Name)
	return nil
}

// RemoveTask removes a periodic task by ID.
func (s *Scheduler) RemoveTask(id string) error {
	s.mu.Lock()
	_, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("periodic task not found: %s", id)
	}
	delete(s.entries, id)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Delete(id); err != nil {
			slog.Warn("scheduler: failed to delete persisted task", "id", id, "error", err)
		}
	}
	slog.Info("scheduler: removed task", "id", id)
	return nil
}

// GetTask returns a periodic task by ID.
func (s *Scheduler) GetTask(id string) (*PeriodicTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	re, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return runtimeToTask(re), true
}

// ListTasks returns all periodic tasks.
func (s *Scheduler) ListTasks() []*PeriodicTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*PeriodicTask, 0, len(s.entries))
	for _, re := range s.entries {
		result = append(result, runtimeToTask(re))
	}
	return result
}

func runtimeToTask(re *runtimeEntry) *PeriodicTask {
	pt := &PeriodicTask{
		ID:          re.id,
		Name:        re.name,
		TaskFunc:    re.taskFunc,
		SkillName:   re.skillName,
		IntervalSec: re.intervalSec,
		OnEvent:     re.onEvent,
		CooldownSec: int(re.cooldown / time.Second),
		MaxRuns:     re.maxRuns,
		RunCount:    re.runCount,
		Enabled:     re.enabled,
	}
	if re.cron != nil {
		pt.CronSpec = re.cron.String()
	}
	if !re.lastRun.IsZero() {
		t := re.lastRun
		pt.LastRunAt = &t
	}
	return pt
}

func (s *Scheduler) loadPersistedEntries() {
	if s.store == nil {
		return
	}
	tasks, err := s.store.List()
	if err != nil {
		slog.Warn("scheduler: failed to load persisted tasks", "error", err)
		return
	}

	for _, pt := range tasks {
		if !pt.Enabled {
			continue
		}
		if _, ok := s.funcs[pt.TaskFunc]; !ok {
			slog.Warn("scheduler: skipping task with unregistered function", "id", pt.ID, "task_func", pt.TaskFunc)
			continue
		}

		re := &runtimeEntry{
			id:          pt.ID,
			name:        pt.Name,
			taskFunc:    pt.TaskFunc,
			skillName:   pt.SkillName,
			intervalSec: pt.IntervalSec,
			onEvent:     pt.OnEvent,
			cooldown:    time.Duration(pt.CooldownSec) * time.Second,
			maxRuns:     pt.MaxRuns,
			runCount:    pt.RunCount,
			enabled:     true,
		}
		if pt.CronSpec != "" {
			expr, err := ParseCron(pt.CronSpec)
			if err != nil {
				slog.Warn("scheduler: invalid cron in persisted task", "id", pt.ID, "error", err)
				continue
			}
			re.cron = expr
		}
		if re.cooldown == 0 {
			re.cooldown = DefaultCooldown
		}

		s.entries[pt.ID] = re
		slog.Info("scheduler: loaded persisted task", "id", pt.ID, "name", pt.Name)
	}
}

func (s *Scheduler) cronLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.checkCron(now)
		}
	}
}

func (s *Scheduler) intervalLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.checkIntervals(now)
		}
	}
}

func (s *Scheduler) checkCron(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.cron == nil || !entry.enabled {
			continue
		}
		if !entry.cron.Matches(now) {
			continue
		}
		if now.Sub(entry.lastRun) < entry.cooldown {
			continue
		}
		s.triggerEntry(entry, "cron")
	}
}

func (s *Scheduler) checkIntervals(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.intervalSec <= 0 || !entry.enabled {
			continue
		}
		interval := time.Duration(entry.intervalSec) * time.Second
		if now.Sub(entry.lastRun) < interval {
			continue
		}
		s.triggerEntry(entry, "interval")
	}
}

func (s *Scheduler) handleEvent(e events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, entry := range s.entries {
		if entry.onEvent == nil || !entry.enabled {
			continue
		}
		if !MatchEvent(e, entry.onEvent) {
			continue
		}
		if now.Sub(entry.lastRun) < entry.cooldown {
			continue
		}
		s.triggerEntry(entry, "event:"+string(e.Type))
	}
}

// triggerEntry invokes the entry's task function in a background
// goroutine. Caller must hold s.mu.
func (s *Scheduler) triggerEntry(re *runtimeEntry, trigger string) {
	re.lastRun = time.Now()
	re.runCount++

	fn := s.funcs[re.taskFunc]
	id := re.id

	go func() {
		if err := fn(context.Background()); err != nil {
			slog.Error("scheduler: task function failed", "id", id, "task_func", re.taskFunc, "error", err)
			return
		}
		slog.Info("scheduler: triggered", "id", id, "trigger", trigger)
	}()

	if s.store != nil {
		s.updateStoredEntry(re)
	}

	if re.maxRuns > 0 && re.runCount >= re.maxRuns {
		re.enabled = false
		slog.Info("scheduler: task reached max runs, disabled", "id", re.id, "runs", re.runCount)
		if s.store != nil {
			s.updateStoredEntry(re)
		}
	}

	// Published from its own goroutine: the bus delivers synchronously, and
	// handleEvent, itself a bus subscriber, takes s.mu, which is held here.
	ev := events.New(events.TypeScheduleTrigger, re.skillName, map[string]any{
		"task_id": re.id,
		"trigger": trigger,
	})
	go s.bus.Publish(ev)
}

func (s *Scheduler) updateStoredEntry(re *runtimeEntry) {
	pt := runtimeToTask(re)
	if err := s.store.Update(pt); err != nil {
		slog.Warn("scheduler: failed to update persisted task", "id", re.id, "error", err)
	}
}
