package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ocna/restaurant-pos/utils"
)

const defaultTableCount = 12

// DefaultTables is the table list used until the admin changes it.
func DefaultTables() []string {
	names := make([]string, defaultTableCount)
	for i := range names {
		names[i] = fmt.Sprintf("Bàn %d", i+1)
	}
	return names
}

type TableStatus struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// TableRegistry is the ordered list of table names shown on the floor plan.
// It knows nothing about orders; see WithStatus.
type TableRegistry struct {
	store BlobStore

	mu     sync.RWMutex
	tables []string
}

func NewTableRegistry(store BlobStore) *TableRegistry {
	return &TableRegistry{store: store, tables: DefaultTables()}
}

// Load reads the saved list. Without one the defaults stay in place and are
// only written on the first change.
func (r *TableRegistry) Load(ctx context.Context) error {
	data, err := r.store.Load(ctx)
	if errors.Is(err, ErrBlobMissing) {
		r.set(DefaultTables())
		return nil
	}
	if err != nil {
		return storageErr("load tables", err)
	}

	var tables []string
	if err := json.Unmarshal(data, &tables); err != nil {
		return storageErr("decode tables", err)
	}
	r.set(tables)
	return nil
}

func (r *TableRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.tables...)
}

func (r *TableRegistry) Add(ctx context.Context, name string) error {
	name, err := cleanTableName(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tables {
		if t == name {
			return invalid("name", fmt.Sprintf("table %q already exists", name))
		}
	}

	next := append(append([]string(nil), r.tables...), name)
	if err := r.save(ctx, next); err != nil {
		return err
	}
	r.tables = next
	utils.InfoLogger.Printf("Table added: %s", name)
	return nil
}

func (r *TableRegistry) Remove(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]string, 0, len(r.tables))
	for _, t := range r.tables {
		if t != name {
			next = append(next, t)
		}
	}
	if len(next) == len(r.tables) {
		return notFound("table", name)
	}

	if err := r.save(ctx, next); err != nil {
		return err
	}
	r.tables = next
	utils.InfoLogger.Printf("Table removed: %s", name)
	return nil
}

// WithStatus marks each registered table that appears in active.
func (r *TableRegistry) WithStatus(active []string) []TableStatus {
	open := make(map[string]bool, len(active))
	for _, name := range active {
		open[name] = true
	}

	tables := r.List()
	out := make([]TableStatus, len(tables))
	for i, name := range tables {
		out[i] = TableStatus{Name: name, Active: open[name]}
	}
	return out
}

func (r *TableRegistry) set(tables []string) {
	if tables == nil {
		tables = []string{}
	}
	r.mu.Lock()
	r.tables = tables
	r.mu.Unlock()
}

func (r *TableRegistry) save(ctx context.Context, tables []string) error {
	data, err := json.Marshal(tables)
	if err != nil {
		return storageErr("encode tables", err)
	}
	if err := r.store.Save(ctx, data); err != nil {
		return storageErr("save tables", err)
	}
	return nil
}
