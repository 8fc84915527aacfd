package client

import (
	"sync"

	"github.com/google/uuid"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/service/review"
)

// Op tags an in-flight mutation so UI elements can discover pending work,
// e.g. to disable a second "reply" action on the same parent.
type Op string

const (
	OpAdd    Op = "comment.add"
	OpUpdate Op = "comment.update"
	OpDelete Op = "comment.delete"
)

// Mutation is an in-flight optimistic edit. For adds, ID doubles as the
// provisional node id until the authoritative refetch replaces it.
type Mutation struct {
	ID       uuid.UUID
	Op       Op
	ParentID *uuid.UUID

	key      string
	snapshot []domain.CommentTree
	hadEntry bool
}

type entry struct {
	result domain.CommentTreeResult
	valid  bool
}

// Cache holds tree snapshots keyed by the full query parameter tuple and
// applies optimistic edits through the pure tree operations. A failed
// mutation restores the snapshot captured when it was staged; settlement
// always invalidates so the next read refetches authoritative data.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[uuid.UUID]*Mutation
}

func NewCache() *Cache {
	return &Cache{
		entries:  make(map[string]*entry),
		inflight: make(map[uuid.UUID]*Mutation),
	}
}

// Get returns the cached result for the filter tuple, if present and fresh.
func (c *Cache) Get(filter domain.CommentFilter) (domain.CommentTreeResult, bool) {
	filter.Normalize()
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[filter.CacheKey()]
	if !ok || !e.valid {
		return domain.CommentTreeResult{}, false
	}
	return e.result, true
}

// Put stores an authoritative result. Keying by the full tuple means a late
// response for a superseded parameter set can never clobber a newer one.
func (c *Cache) Put(filter domain.CommentFilter, result domain.CommentTreeResult) {
	filter.Normalize()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[filter.CacheKey()] = &entry{result: result, valid: true}
}

// Invalidate marks every cached tree stale.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		e.valid = false
	}
}

// StageAdd applies a provisional node to the cached tree for the filter tuple
// and records the in-flight mutation. The returned id identifies both the
// mutation and the provisional node.
func (c *Cache) StageAdd(filter domain.CommentFilter, node domain.Comment, parentID *uuid.UUID) uuid.UUID {
	filter.Normalize()
	c.mu.Lock()
	defer c.mu.Unlock()

	if node.ID == uuid.Nil {
		node.ID = uuid.New()
	}
	node.ParentID = parentID
	provisional := domain.CommentTree{Comment: node, Replies: []domain.CommentTree{}}

	m := &Mutation{ID: node.ID, Op: OpAdd, ParentID: parentID, key: filter.CacheKey()}
	c.stage(m, func(tree []domain.CommentTree) []domain.CommentTree {
		return review.InsertNode(tree, provisional, parentID)
	})
	return m.ID
}

// StageUpdate shallow-merges the patch into the cached tree.
func (c *Cache) StageUpdate(filter domain.CommentFilter, patch review.NodePatch) uuid.UUID {
	filter.Normalize()
	c.mu.Lock()
	defer c.mu.Unlock()

	m := &Mutation{ID: uuid.New(), Op: OpUpdate, key: filter.CacheKey()}
	c.stage(m, func(tree []domain.CommentTree) []domain.CommentTree {
		return review.UpdateNode(tree, patch)
	})
	return m.ID
}

// StageRemove drops the node (and its nested replies) from the cached tree.
func (c *Cache) StageRemove(filter domain.CommentFilter, id uuid.UUID) uuid.UUID {
	filter.Normalize()
	c.mu.Lock()
	defer c.mu.Unlock()

	m := &Mutation{ID: uuid.New(), Op: OpDelete, key: filter.CacheKey()}
	c.stage(m, func(tree []domain.CommentTree) []domain.CommentTree {
		return review.RemoveNode(tree, id)
	})
	return m.ID
}

func (c *Cache) stage(m *Mutation, apply func([]domain.CommentTree) []domain.CommentTree) {
	if e, ok := c.entries[m.key]; ok {
		m.snapshot = e.result.CommentTree
		m.hadEntry = true
		e.result.CommentTree = apply(e.result.CommentTree)
	}
	c.inflight[m.ID] = m
}

// Settle resolves a staged mutation. On error the pre-mutation snapshot is
// restored; either way every cached tree is invalidated so the next read
// goes back to the server.
func (c *Cache) Settle(mutationID uuid.UUID, mutationErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.inflight[mutationID]
	if !ok {
		return
	}
	delete(c.inflight, mutationID)

	if mutationErr != nil && m.hadEntry {
		if e, ok := c.entries[m.key]; ok {
			e.result.CommentTree = m.snapshot
		}
	}

	for _, e := range c.entries {
		e.valid = false
	}
}

// Pending reports whether a mutation with the given operation and parent
// target is in flight.
func (c *Cache) Pending(op Op, parentID *uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.inflight {
		if m.Op != op {
			continue
		}
		if parentID == nil && m.ParentID == nil {
			return true
		}
		if parentID != nil && m.ParentID != nil && *parentID == *m.ParentID {
			return true
		}
	}
	return false
}

// PendingReply reports whether an add targeting the given parent is in flight.
func (c *Cache) PendingReply(parentID uuid.UUID) bool {
	return c.Pending(OpAdd, &parentID)
}
