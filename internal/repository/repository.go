package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cams/pkg/export"
	appErrors "github.com/noah-isme/cams/pkg/errors"
)

// Entity is stored by id and handed out as independent copies.
type Entity[T any] interface {
	GetID() string
	Clone() T
}

// Codec maps an entity kind to a flat row with a fixed header.
type Codec[T any] interface {
	Header() []string
	Encode(entity T) (map[string]string, error)
	Decode(row map[string]string) (T, error)
}

type recordStorage interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
}

// CommitObserver is told about every flush to storage.
type CommitObserver interface {
	ObserveCommit(repository string, duration time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveCommit(string, time.Duration, error) {}

// Repository is the durable, id-indexed store for one entity kind. The whole
// index is rewritten to a single CSV file on every committed mutation.
type Repository[T Entity[T]] struct {
	name     string
	filename string
	codec    Codec[T]
	storage  recordStorage
	csv      *export.CSVExporter
	logger   *zap.Logger
	observer CommitObserver

	mu    sync.Mutex
	order []string
	items map[string]T
	rows  map[string]map[string]string
}

// New constructs an empty repository persisted to filename inside storage.
func New[T Entity[T]](name, filename string, codec Codec[T], storage recordStorage, logger *zap.Logger, observer CommitObserver) *Repository[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Repository[T]{
		name:     name,
		filename: filename,
		codec:    codec,
		storage:  storage,
		csv:      export.NewCSVExporter(),
		logger:   logger.With(zap.String("repository", name)),
		observer: observer,
		items:    make(map[string]T),
		rows:     make(map[string]map[string]string),
	}
}

// Name returns the repository name used in logs and metrics.
func (r *Repository[T]) Name() string { return r.name }

// Load replaces the in-memory index with the stored records. A missing file is an empty repository.
func (r *Repository[T]) Load(ctx context.Context) error {
	raw, err := r.storage.Read(r.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.mu.Lock()
			r.reset()
			r.mu.Unlock()
			r.logger.Debug("no stored records, starting empty")
			return nil
		}
		return fmt.Errorf("load %s: %w", r.name, err)
	}
	data, err := r.csv.Parse(raw)
	if err != nil {
		return fmt.Errorf("load %s: %w", r.name, err)
	}
	if err := checkHeader(r.codec.Header(), data.Headers); err != nil {
		return fmt.Errorf("load %s: %w", r.name, err)
	}

	order := make([]string, 0, len(data.Rows))
	items := make(map[string]T, len(data.Rows))
	rows := make(map[string]map[string]string, len(data.Rows))
	for i, row := range data.Rows {
		entity, err := r.codec.Decode(row)
		if err != nil {
			return fmt.Errorf("load %s: row %d: %w", r.name, i+1, err)
		}
		id := entity.GetID()
		if _, dup := items[id]; dup {
			return fmt.Errorf("load %s: duplicate id %q", r.name, id)
		}
		order = append(order, id)
		items[id] = entity
		rows[id] = row
	}

	r.mu.Lock()
	r.order, r.items, r.rows = order, items, rows
	r.mu.Unlock()
	r.logger.Debug("records loaded", zap.Int("count", len(order)))
	return nil
}

// Save flushes the full index to storage.
func (r *Repository[T]) Save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// Create inserts a new entity and returns the stored copy.
func (r *Repository[T]) Create(ctx context.Context, entity T) (T, error) {
	var zero T
	id := entity.GetID()
	if id == "" {
		return zero, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: id is required", r.name))
	}
	row, err := r.encode(entity)
	if err != nil {
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[id]; exists {
		return zero, appErrors.Clone(appErrors.ErrDuplicateID, fmt.Sprintf("%s: id %s already exists", r.name, id))
	}
	stored := entity.Clone()
	r.order = append(r.order, id)
	r.items[id] = stored
	r.rows[id] = row
	if err := r.flush(); err != nil {
		return stored.Clone(), err
	}
	return stored.Clone(), nil
}

// Read returns a copy of the entity with the given id.
func (r *Repository[T]) Read(ctx context.Context, id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entity, ok := r.items[id]
	if !ok {
		var zero T
		return zero, r.notFound(id)
	}
	return entity.Clone(), nil
}

// Update replaces an existing entity.
func (r *Repository[T]) Update(ctx context.Context, entity T) error {
	id := entity.GetID()
	row, err := r.encode(entity)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return r.notFound(id)
	}
	r.items[id] = entity.Clone()
	r.rows[id] = row
	return r.flush()
}

// Delete removes the entity with the given id.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return r.notFound(id)
	}
	delete(r.items, id)
	delete(r.rows, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return r.flush()
}

// FindByRules returns copies of every entity matching all rules, in insertion order.
func (r *Repository[T]) FindByRules(ctx context.Context, rules ...func(T) bool) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0)
	for _, id := range r.order {
		entity := r.items[id]
		if matchesAll(entity, rules) {
			out = append(out, entity.Clone())
		}
	}
	return out
}

// All returns copies of every entity in insertion order.
func (r *Repository[T]) All(ctx context.Context) []T {
	return r.FindByRules(ctx)
}

// IDs returns every stored id in insertion order.
func (r *Repository[T]) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// IsEmpty reports whether no entity is stored.
func (r *Repository[T]) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order) == 0
}

func (r *Repository[T]) encode(entity T) (map[string]string, error) {
	row, err := r.codec.Encode(entity)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, fmt.Sprintf("%s: cannot store %s", r.name, entity.GetID()))
	}
	return row, nil
}

// flush must be called with mu held.
func (r *Repository[T]) flush() error {
	start := time.Now()
	data := export.Dataset{Headers: r.codec.Header(), Rows: make([]map[string]string, 0, len(r.order))}
	for _, id := range r.order {
		data.Rows = append(data.Rows, r.rows[id])
	}
	raw, err := r.csv.Render(data)
	if err == nil {
		_, err = r.storage.Save(r.filename, raw)
	}
	r.observer.ObserveCommit(r.name, time.Since(start), err)
	if err != nil {
		r.logger.Error("failed to persist records", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, fmt.Sprintf("%s: %s", r.name, appErrors.ErrPersistence.Message))
	}
	return nil
}

func (r *Repository[T]) reset() {
	r.order = nil
	r.items = make(map[string]T)
	r.rows = make(map[string]map[string]string)
}

func (r *Repository[T]) notFound(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s: %s not found", r.name, id))
}

func matchesAll[T any](entity T, rules []func(T) bool) bool {
	for _, rule := range rules {
		if !rule(entity) {
			return false
		}
	}
	return true
}

func checkHeader(want, got []string) error {
	if len(want) != len(got) {
		return fmt.Errorf("header has %d columns, want %d", len(got), len(want))
	}
	present := make(map[string]struct{}, len(got))
	for _, h := range got {
		present[h] = struct{}{}
	}
	for _, h := range want {
		if _, ok := present[h]; !ok {
			return fmt.Errorf("header is missing column %q", h)
		}
	}
	return nil
}
