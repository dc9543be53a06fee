package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	apphistory "github.com/zjrosen/lineage/internal/history/application"
	domain "github.com/zjrosen/lineage/internal/history/domain"
	"github.com/zjrosen/lineage/internal/log"
)

// Compile-time interface checks.
var (
	_ apphistory.CommitSource     = (*CachedSource)(nil)
	_ apphistory.RevisionResolver = (*CachedSource)(nil)
	_ apphistory.Invalidator      = (*CachedSource)(nil)
)

// CachedSource serves repeated LoadCommits calls from memory until the TTL
// expires or Invalidate is called.
type CachedSource struct {
	inner apphistory.CommitSource
	cache *cache.Cache
	key   string
	mu    sync.Mutex // serializes loads on a miss
}

// NewCachedSource wraps inner. ttl must be positive.
func NewCachedSource(inner apphistory.CommitSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
		key:   fmt.Sprintf("%s:%s", inner.Kind(), inner.RepoDir()),
	}
}

// RepoDir returns the wrapped source's directory.
func (s *CachedSource) RepoDir() string { return s.inner.RepoDir() }

// Kind returns the wrapped source's kind.
func (s *CachedSource) Kind() domain.SourceKind { return s.inner.Kind() }

// LoadCommits returns the cached list, loading it on a miss.
func (s *CachedSource) LoadCommits(ctx context.Context) ([]domain.Commit, error) {
	if commits, ok := s.get(); ok {
		return commits, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if commits, ok := s.get(); ok {
		return commits, nil
	}

	commits, err := s.inner.LoadCommits(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(s.key, commits)
	log.Debug(log.CatCache, "Cached commit list", "key", s.key, "commits", len(commits))
	return commits, nil
}

func (s *CachedSource) get() ([]domain.Commit, bool) {
	v, ok := s.cache.Get(s.key)
	if !ok {
		return nil, false
	}
	log.Debug(log.CatCache, "Cache hit", "key", s.key)
	return v.([]domain.Commit), true
}

// ResolveRevision forwards to the wrapped source when it can resolve.
func (s *CachedSource) ResolveRevision(ctx context.Context, rev string) (string, error) {
	r, ok := s.inner.(apphistory.RevisionResolver)
	if !ok {
		return "", fmt.Errorf("source %s cannot resolve revisions", s.inner.Kind())
	}
	return r.ResolveRevision(ctx, rev)
}

// Invalidate drops the cached list.
func (s *CachedSource) Invalidate() {
	s.cache.Delete(s.key)
	log.Debug(log.CatCache, "Cache invalidated", "key", s.key)
}
