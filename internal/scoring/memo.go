package scoring

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/electroluxcode/score-analyzer/internal/infrastructure"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// DefaultMemoSize is the number of results a CachedPipeline keeps when
// no size is given.
const DefaultMemoSize = 64

// CachedPipeline wraps a Pipeline with a bounded LRU of results keyed on
// a SHA-256 hash of the snapshot's raw content and the pipeline's
// config. Cached results are deep-copied on the way in and out.
type CachedPipeline struct {
	*Pipeline

	mu      sync.Mutex
	size    int
	entries map[string]*list.Element
	order   *list.List
}

type memoEntry struct {
	key    string
	result domain.ExamSnapshot
}

// NewCachedPipeline wraps p. size < 1 selects DefaultMemoSize.
func NewCachedPipeline(p *Pipeline, size int) *CachedPipeline {
	if size < 1 {
		size = DefaultMemoSize
	}
	return &CachedPipeline{
		Pipeline: p,
		size:     size,
		entries:  make(map[string]*list.Element, size),
		order:    list.New(),
	}
}

// Run returns the cached result for snap when its content was scored
// before, otherwise runs the pipeline and remembers the result.
func (c *CachedPipeline) Run(ctx context.Context, snap domain.ExamSnapshot) (domain.ExamSnapshot, error) {
	key, err := c.key(snap)
	if err != nil {
		return domain.ExamSnapshot{}, err
	}

	if res, ok := c.lookup(key); ok {
		infrastructure.RecordCacheLookup(ctx, c.metrics, true)
		return res, nil
	}
	infrastructure.RecordCacheLookup(ctx, c.metrics, false)

	res, err := c.Pipeline.Run(ctx, snap)
	if err != nil {
		return domain.ExamSnapshot{}, err
	}
	c.store(key, res)
	return res, nil
}

// RunBatch is Pipeline.RunBatch with every snapshot going through the
// cache.
func (c *CachedPipeline) RunBatch(ctx context.Context, snaps []domain.ExamSnapshot) ([]domain.ExamSnapshot, error) {
	out := make([]domain.ExamSnapshot, len(snaps))
	for i, snap := range snaps {
		res, err := c.Run(ctx, snap)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

// Len reports the number of cached results.
func (c *CachedPipeline) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every cached result.
func (c *CachedPipeline) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element, c.size)
	c.order.Init()
}

func (c *CachedPipeline) lookup(key string) (domain.ExamSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return domain.ExamSnapshot{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*memoEntry).result.Clone(), true
}

func (c *CachedPipeline) store(key string, res domain.ExamSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&memoEntry{key: key, result: res.Clone()})
	for c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*memoEntry).key)
	}
}

// memoInput is the part of a run that determines its output.
type memoInput struct {
	Policy     TiePolicy               `json:"policy"`
	Config     domain.AssignmentConfig `json:"config"`
	ExamNumber int                     `json:"exam_number"`
	ExamName   string                  `json:"exam_name"`
	ExamTime   string                  `json:"exam_time"`
	Students   []memoStudent           `json:"students"`
}

type memoStudent struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Class  string          `json:"class"`
	Scores domain.ScoreSet `json:"scores"`
}

func (c *CachedPipeline) key(snap domain.ExamSnapshot) (string, error) {
	in := memoInput{
		Policy:     c.policy,
		Config:     c.config,
		ExamNumber: snap.ExamNumber,
		ExamName:   snap.ExamName,
		ExamTime:   snap.ExamTime,
		Students:   make([]memoStudent, len(snap.Students)),
	}
	for i, r := range snap.Students {
		in.Students[i] = memoStudent{ID: r.StudentID, Name: r.Name, Class: r.Class, Scores: r.Scores}
	}

	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("hash snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
