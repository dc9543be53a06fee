package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/zjrosen/lineage/internal/history/domain"
	"github.com/zjrosen/lineage/internal/log"
)

// tracerName identifies spans emitted by the history service.
const tracerName = "github.com/zjrosen/lineage/internal/history"

// minPrefixLen is the shortest hash prefix accepted as a revision, as in git.
const minPrefixLen = 4

// ErrNoRunRepository is returned by Record when the service has no run store.
var ErrNoRunRepository = errors.New("run history is disabled")

// Result is an annotated walk.
type Result struct {
	RepoDir string
	Source  domain.SourceKind
	Start   domain.Commit
	Steps   []domain.Step
	Total   int // Commits loaded from the repository
}

// Commits returns the walked commits in visitation order.
func (r Result) Commits() []domain.Commit {
	out := make([]domain.Commit, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Commit
	}
	return out
}

// Service loads history and walks commit ancestry.
type Service struct {
	source CommitSource
	runs   domain.RunRepository
	tracer trace.Tracer
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRunRepository enables Record.
func WithRunRepository(runs domain.RunRepository) Option {
	return func(s *Service) { s.runs = runs }
}

// WithTracer overrides the tracer obtained from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// WithClock overrides time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service reading from source.
func NewService(source CommitSource, opts ...Option) *Service {
	s := &Service{
		source: source,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invalidate drops cached history if the source caches.
func (s *Service) Invalidate() {
	if inv, ok := s.source.(Invalidator); ok {
		inv.Invalidate()
	}
}

// Load returns the repository's commit list.
func (s *Service) Load(ctx context.Context) ([]domain.Commit, error) {
	ctx, span := s.tracer.Start(ctx, "history.load", trace.WithAttributes(
		attribute.String("repo.dir", s.source.RepoDir()),
		attribute.String("source", string(s.source.Kind())),
	))
	defer span.End()

	commits, err := s.source.LoadCommits(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		log.ErrorErr(log.CatGit, "Failed to load commits", err, "dir", s.source.RepoDir())
		return nil, &domain.LoadError{RepoDir: s.source.RepoDir(), Err: err}
	}
	span.SetAttributes(attribute.Int("commits", len(commits)))
	log.Debug(log.CatGit, "Loaded commits", "dir", s.source.RepoDir(), "count", len(commits))
	return commits, nil
}

// ResolveStart picks the walk's start commit from commits.
//
// An empty rev selects the first commit, which is the newest one as git
// lists history. Otherwise rev is tried as a full hash, then as a unique hash
// prefix, then through the source's RevisionResolver if it has one.
func (s *Service) ResolveStart(ctx context.Context, commits []domain.Commit, rev string) (domain.Commit, error) {
	ctx, span := s.tracer.Start(ctx, "history.resolve", trace.WithAttributes(attribute.String("rev", rev)))
	defer span.End()

	if len(commits) == 0 {
		return domain.Commit{}, domain.ErrEmptyHistory
	}
	if rev == "" {
		return commits[0], nil
	}

	index := domain.NewIndex(commits)
	if c, ok := index.Lookup(rev); ok {
		return c, nil
	}

	if len(rev) >= minPrefixLen && isHex(rev) {
		c, err := matchPrefix(commits, rev)
		if err != nil {
			return domain.Commit{}, err
		}
		if c != nil {
			return *c, nil
		}
	}

	if resolver, ok := s.source.(RevisionResolver); ok {
		hash, err := resolver.ResolveRevision(ctx, rev)
		if err == nil {
			if c, ok := index.Lookup(hash); ok {
				return c, nil
			}
			log.Debug(log.CatGit, "Resolved revision is outside loaded history", "rev", rev, "hash", hash)
		} else {
			log.Debug(log.CatGit, "Revision did not resolve", "rev", rev, "error", err)
		}
	}

	return domain.Commit{}, &domain.RevisionNotFoundError{Rev: rev}
}

// Ancestry loads history, resolves rev and returns the annotated walk.
func (s *Service) Ancestry(ctx context.Context, rev string) (Result, error) {
	commits, err := s.Load(ctx)
	if err != nil {
		return Result{}, err
	}
	start, err := s.ResolveStart(ctx, commits, rev)
	if err != nil {
		return Result{}, err
	}
	return s.Walk(ctx, commits, start), nil
}

// Walk runs the ancestry walk over already loaded commits.
func (s *Service) Walk(ctx context.Context, commits []domain.Commit, start domain.Commit) Result {
	_, span := s.tracer.Start(ctx, "history.walk", trace.WithAttributes(
		attribute.String("start", start.Hash),
		attribute.Int("commits", len(commits)),
	))
	defer span.End()

	steps := domain.Annotate(domain.Walk(commits, start))
	span.SetAttributes(attribute.Int("steps", len(steps)))
	log.Debug(log.CatWalk, "Walked ancestry", "start", start.ShortHash(), "steps", len(steps), "loaded", len(commits))

	return Result{
		RepoDir: s.source.RepoDir(),
		Source:  s.source.Kind(),
		Start:   start,
		Steps:   steps,
		Total:   len(commits),
	}
}

// Record persists result as a new run.
func (s *Service) Record(ctx context.Context, result Result) (*domain.Run, error) {
	if s.runs == nil {
		return nil, ErrNoRunRepository
	}
	_, span := s.tracer.Start(ctx, "history.record", trace.WithAttributes(attribute.Int("steps", len(result.Steps))))
	defer span.End()

	run := &domain.Run{
		GUID:        uuid.NewString(),
		RepoDir:     result.RepoDir,
		StartHash:   result.Start.Hash,
		Source:      result.Source,
		CommitCount: result.Total,
		CreatedAt:   s.now(),
		Steps:       domain.NewRunSteps(result.Steps),
	}
	if err := s.runs.Save(run); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return nil, fmt.Errorf("saving run: %w", err)
	}
	log.Info(log.CatDB, "Recorded run", "guid", run.GUID, "steps", len(run.Steps))
	return run, nil
}

// matchPrefix returns the single commit whose hash starts with prefix, nil if
// none does, or an AmbiguousRevisionError.
func matchPrefix(commits []domain.Commit, prefix string) (*domain.Commit, error) {
	prefix = strings.ToLower(prefix)
	var found *domain.Commit
	var matches []string
	for i := range commits {
		c := &commits[i]
		if !strings.HasPrefix(c.Hash, prefix) || containsString(matches, c.Hash) {
			continue
		}
		matches = append(matches, c.Hash)
		found = c
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return found, nil
	default:
		return nil, &domain.AmbiguousRevisionError{Rev: prefix, Matches: matches}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
