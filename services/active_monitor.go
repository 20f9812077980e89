package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/ocna/restaurant-pos/utils"
)

// ActiveTablesLister is the read the monitor polls.
type ActiveTablesLister interface {
	ListActiveTables(ctx context.Context) ([]string, error)
}

// ActiveMonitor re-reads the set of tables with an open order on a fixed
// interval and keeps the latest result for the floor plan.
type ActiveMonitor struct {
	ledger    ActiveTablesLister
	Interval  time.Duration
	scheduler gocron.Scheduler

	mu     sync.RWMutex
	active []string
}

func NewActiveMonitor(ledger ActiveTablesLister, interval time.Duration) *ActiveMonitor {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &ActiveMonitor{
		ledger:   ledger,
		Interval: interval,
		active:   []string{},
	}
}

func (m *ActiveMonitor) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(m.Interval),
		gocron.NewTask(func() { m.Poll(context.Background()) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule active table poll: %w", err)
	}

	m.scheduler = s
	s.Start()
	utils.InfoLogger.Printf("Active table monitor started (every %s)", m.Interval)
	return nil
}

func (m *ActiveMonitor) Stop() error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Shutdown()
}

// Poll refreshes the snapshot once.
func (m *ActiveMonitor) Poll(ctx context.Context) {
	current, err := m.ledger.ListActiveTables(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Error polling active tables: %v", err)
		return
	}

	m.mu.Lock()
	previous := m.active
	m.active = current
	m.mu.Unlock()

	opened, freed := diffNames(previous, current)
	for _, name := range opened {
		utils.InfoLogger.Printf("Table became active: %s", name)
	}
	for _, name := range freed {
		utils.InfoLogger.Printf("Table became free: %s", name)
	}
}

// Snapshot returns the active tables seen by the last poll.
func (m *ActiveMonitor) Snapshot() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.active...)
}

func diffNames(before, after []string) (added, removed []string) {
	was := make(map[string]bool, len(before))
	for _, n := range before {
		was[n] = true
	}
	is := make(map[string]bool, len(after))
	for _, n := range after {
		is[n] = true
		if !was[n] {
			added = append(added, n)
		}
	}
	for _, n := range before {
		if !is[n] {
			removed = append(removed, n)
		}
	}
	return added, removed
}
