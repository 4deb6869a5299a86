// Package memory implements the storage interfaces with in-process maps.
// It backs tests and DB-less development; semantics mirror the PostgreSQL
// backend, including the atomic style-guide save and pending-job claim.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/db/interfaces"
)

type Database struct {
	mu sync.RWMutex

	creators        map[string]entities.Creator
	content         map[string]entities.ContentSample
	styleGuides     map[string]entities.StyleGuide
	historicalPosts map[string]entities.HistoricalPost
	generatedPosts  map[string]entities.GeneratedPost
	ingestJobs      map[string]entities.IngestJob
}

func NewDatabase() *Database {
	return &Database{
		creators:        make(map[string]entities.Creator),
		content:         make(map[string]entities.ContentSample),
		styleGuides:     make(map[string]entities.StyleGuide),
		historicalPosts: make(map[string]entities.HistoricalPost),
		generatedPosts:  make(map[string]entities.GeneratedPost),
		ingestJobs:      make(map[string]entities.IngestJob),
	}
}

func (d *Database) Creators() interfaces.CreatorStore               { return (*creatorStore)(d) }
func (d *Database) Content() interfaces.ContentStore                { return (*contentStore)(d) }
func (d *Database) StyleGuides() interfaces.StyleGuideStore         { return (*styleGuideStore)(d) }
func (d *Database) HistoricalPosts() interfaces.HistoricalPostStore { return (*historicalPostStore)(d) }
func (d *Database) GeneratedPosts() interfaces.GeneratedPostStore   { return (*generatedPostStore)(d) }
func (d *Database) IngestJobs() interfaces.IngestJobStore           { return (*ingestJobStore)(d) }

func (d *Database) Ping(ctx context.Context) error { return nil }
func (d *Database) Close()                         {}

func newID() string { return uuid.NewString() }

// Creators

type creatorStore Database

func (s *creatorStore) List(ctx context.Context) ([]entities.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Creator, 0, len(s.creators))
	for _, c := range s.creators {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := priorityRank(out[i].Priority), priorityRank(out[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func priorityRank(p string) int {
	for i, tier := range entities.PriorityOrder {
		if tier == p {
			return i
		}
	}
	return len(entities.PriorityOrder)
}

func (s *creatorStore) Get(ctx context.Context, id string) (*entities.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creators[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &c, nil
}

func (s *creatorStore) Create(ctx context.Context, creator *entities.Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if creator.ID == "" {
		creator.ID = newID()
	}
	now := time.Now().UTC()
	creator.CreatedAt = now
	creator.UpdatedAt = now
	s.creators[creator.ID] = *creator
	return nil
}

func (s *creatorStore) Update(ctx context.Context, creator *entities.Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.creators[creator.ID]
	if !ok {
		return interfaces.ErrNotFound
	}
	creator.CreatedAt = existing.CreatedAt
	creator.UpdatedAt = time.Now().UTC()
	s.creators[creator.ID] = *creator
	return nil
}

func (s *creatorStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creators[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(s.creators, id)

	// Cascade, matching the postgres foreign key.
	for cid, sample := range s.content {
		if sample.CreatorID == id {
			delete(s.content, cid)
		}
	}
	return nil
}

func (s *creatorStore) FindByNameLike(ctx context.Context, name string) ([]entities.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(name)
	var out []entities.Creator
	for _, c := range s.creators {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Content samples

type contentStore Database

func (s *contentStore) ListByCreator(ctx context.Context, creatorID string) ([]entities.ContentSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.ContentSample
	for _, sample := range s.content {
		if sample.CreatorID == creatorID {
			out = append(out, sample)
		}
	}
	sortSamples(out)
	return out, nil
}

func sortSamples(samples []entities.ContentSample) {
	sort.Slice(samples, func(i, j int) bool {
		return effectiveDate(samples[i]).After(effectiveDate(samples[j]))
	})
}

func effectiveDate(s entities.ContentSample) time.Time {
	if s.PostedAt != nil {
		return *s.PostedAt
	}
	return s.CreatedAt
}

func (s *contentStore) Get(ctx context.Context, id string) (*entities.ContentSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sample, ok := s.content[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &sample, nil
}

func (s *contentStore) Create(ctx context.Context, sample *entities.ContentSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creators[sample.CreatorID]; !ok {
		return interfaces.ErrNotFound
	}
	if sample.ID == "" {
		sample.ID = newID()
	}
	sample.CreatedAt = time.Now().UTC()
	s.content[sample.ID] = *sample
	return nil
}

func (s *contentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.content[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(s.content, id)
	return nil
}

func (s *contentStore) ListByField(ctx context.Context, field string, limit int) ([]entities.ContentSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.ContentSample
	for _, sample := range s.content {
		creator, ok := s.creators[sample.CreatorID]
		if !ok || !creator.HasField(field) {
			continue
		}
		sample.CreatorName = creator.Name
		out = append(out, sample)
	}
	sortSamples(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Style guides

type styleGuideStore Database

func (s *styleGuideStore) Active(ctx context.Context) (*entities.StyleGuide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, guide := range s.styleGuides {
		if guide.IsActive {
			return &guide, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (s *styleGuideStore) Save(ctx context.Context, content string) (*entities.StyleGuide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for id, guide := range s.styleGuides {
		if guide.IsActive {
			guide.Content = content
			guide.Version++
			guide.UpdatedAt = now
			s.styleGuides[id] = guide
			return &guide, nil
		}
	}

	guide := entities.StyleGuide{
		ID:        newID(),
		Content:   content,
		Version:   1,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.styleGuides[guide.ID] = guide
	return &guide, nil
}

// Historical posts

type historicalPostStore Database

func (s *historicalPostStore) List(ctx context.Context) ([]entities.HistoricalPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.HistoricalPost, 0, len(s.historicalPosts))
	for _, p := range s.historicalPosts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *historicalPostStore) Create(ctx context.Context, post *entities.HistoricalPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = newID()
	}
	post.CreatedAt = time.Now().UTC()
	s.historicalPosts[post.ID] = *post
	return nil
}

func (s *historicalPostStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.historicalPosts[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(s.historicalPosts, id)
	return nil
}

// Generated posts

type generatedPostStore Database

func (s *generatedPostStore) List(ctx context.Context) ([]entities.GeneratedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.GeneratedPost, 0, len(s.generatedPosts))
	for _, p := range s.generatedPosts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *generatedPostStore) Get(ctx context.Context, id string) (*entities.GeneratedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.generatedPosts[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &p, nil
}

func (s *generatedPostStore) Create(ctx context.Context, post *entities.GeneratedPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = newID()
	}
	post.CreatedAt = time.Now().UTC()
	s.generatedPosts[post.ID] = *post
	return nil
}

func (s *generatedPostStore) MarkPublished(ctx context.Context, id string, at time.Time) (*entities.GeneratedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.generatedPosts[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	p.WasPublished = true
	p.PublishedAt = &at
	s.generatedPosts[id] = p
	return &p, nil
}

func (s *generatedPostStore) UpdateMetrics(ctx context.Context, id string, metrics entities.PerformanceMetrics, feedback *string, rating *int) (*entities.GeneratedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.generatedPosts[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	p.Metrics = &metrics
	if feedback != nil {
		p.Feedback = feedback
	}
	if rating != nil {
		p.Rating = rating
	}
	s.generatedPosts[id] = p
	return &p, nil
}

func (s *generatedPostStore) ListNeedingMetrics(ctx context.Context, publishedBefore time.Time) ([]entities.GeneratedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.GeneratedPost
	for _, p := range s.generatedPosts {
		if p.WasPublished && p.PublishedAt != nil && p.Metrics == nil && p.PublishedAt.Before(publishedBefore) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.Before(*out[j].PublishedAt) })
	return out, nil
}

// Ingest jobs

type ingestJobStore Database

func (s *ingestJobStore) Create(ctx context.Context, job *entities.IngestJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == "" {
		job.ID = newID()
	}
	if job.Status == "" {
		job.Status = entities.JobPending
	}
	job.CreatedAt = time.Now().UTC()
	s.ingestJobs[job.ID] = *job
	return nil
}

func (s *ingestJobStore) Get(ctx context.Context, id string) (*entities.IngestJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.ingestJobs[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &j, nil
}

func (s *ingestJobStore) List(ctx context.Context, limit int) ([]entities.IngestJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.IngestJob, 0, len(s.ingestJobs))
	for _, j := range s.ingestJobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ingestJobStore) ClaimNextPending(ctx context.Context) (*entities.IngestJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest *entities.IngestJob
	for id := range s.ingestJobs {
		j := s.ingestJobs[id]
		if j.Status != entities.JobPending {
			continue
		}
		if oldest == nil || j.CreatedAt.Before(oldest.CreatedAt) {
			claimed := j
			oldest = &claimed
		}
	}
	if oldest == nil {
		return nil, interfaces.ErrNotFound
	}

	now := time.Now().UTC()
	oldest.Status = entities.JobRunning
	oldest.StartedAt = &now
	s.ingestJobs[oldest.ID] = *oldest
	return oldest, nil
}

func (s *ingestJobStore) MarkSucceeded(ctx context.Context, id, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.ingestJobs[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	now := time.Now().UTC()
	j.Status = entities.JobSucceeded
	j.ContentID = &contentID
	j.FinishedAt = &now
	s.ingestJobs[id] = j
	return nil
}

func (s *ingestJobStore) MarkFailed(ctx context.Context, id, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.ingestJobs[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	now := time.Now().UTC()
	j.Status = entities.JobFailed
	j.Error = &errMsg
	j.FinishedAt = &now
	s.ingestJobs[id] = j
	return nil
}

var _ interfaces.Database = (*Database)(nil)
