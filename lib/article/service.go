// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package article

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/inkstand/inkstand/lib/clock"
	"github.com/inkstand/inkstand/lib/docstore"
)

// Filter selects articles by top-level field equality. See
// docstore.Filter for matching rules.
type Filter = docstore.Filter

// DocumentStore is the persistence capability the service needs.
// *docstore.Store implements it.
type DocumentStore interface {
	Insert(ctx context.Context, document any) (docstore.Record, error)
	Find(ctx context.Context, filter docstore.Filter) ([]docstore.Record, error)
	Update(ctx context.Context, filter docstore.Filter, document any) (docstore.Record, error)
	Remove(ctx context.Context, filter docstore.Filter) (int, error)
}

// Config holds the dependencies of a Service.
type Config struct {
	// Store is required.
	Store DocumentStore

	// MaxHistory bounds each article's revision list. Zero keeps no
	// revisions. Negative is rejected.
	MaxHistory int

	// Clock supplies creation and edit timestamps. Nil uses the real
	// clock.
	Clock clock.Clock

	// Logger receives lifecycle messages. Nil discards them.
	Logger *slog.Logger

	Keys KeyOptions
}

// Service runs the article lifecycle against a DocumentStore.
type Service struct {
	store   DocumentStore
	history HistoryManager
	clock   clock.Clock
	logger  *slog.Logger
	keys    *KeyGenerator
}

// NewService validates cfg and returns a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("article: Store is required")
	}
	if cfg.MaxHistory < 0 {
		return nil, fmt.Errorf("article: MaxHistory must not be negative, got %d", cfg.MaxHistory)
	}

	service := &Service{
		store:   cfg.Store,
		history: HistoryManager{MaxHistory: cfg.MaxHistory},
		clock:   cfg.Clock,
		logger:  cfg.Logger,
	}
	if service.clock == nil {
		service.clock = clock.Real()
	}
	if service.logger == nil {
		service.logger = slog.New(slog.DiscardHandler)
	}
	service.keys = NewKeyGenerator(service.Exists, cfg.Keys)
	return service, nil
}

// Exists reports whether any record holds key.
func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	records, err := s.store.Find(ctx, docstore.Filter{"key": key})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

// Create stores a new draft article under a fresh key and returns the
// stored record. A key taken by another writer between generation and
// insert is retried, up to the key generator's MaxAttempts inserts.
func (s *Service) Create(ctx context.Context, input CreateInput) (Article, error) {
	attempts := s.keys.MaxAttempts()
	for range attempts {
		key, err := s.keys.Generate(ctx)
		if err != nil {
			s.logger.Error("generating article key failed", "error", err)
			return Article{}, fmt.Errorf("creating article: %w", err)
		}

		now := s.clock.Now()
		article := Article{
			Key:            key,
			Type:           TypeArticle,
			Title:          input.Title,
			Content:        input.Content,
			Introduction:   input.Introduction,
			Tags:           normalizeTags(input.Tags),
			Published:      false,
			CreateDate:     now,
			EditDate:       now,
			HistoryContent: []Revision{},
		}

		record, err := s.store.Insert(ctx, article)
		if errors.Is(err, docstore.ErrDuplicateKey) {
			// Another writer took the key between the existence check
			// and the insert.
			s.logger.Debug("article key collided on insert, retrying", "key", key)
			continue
		}
		if err != nil {
			s.logger.Error("creating article failed", "title", article.DisplayTitle(), "error", err)
			return Article{}, fmt.Errorf("creating article: %w", err)
		}

		created, err := decode(record)
		if err != nil {
			return Article{}, err
		}
		s.logger.Info("article created", "key", created.Key, "title", created.DisplayTitle())
		return created, nil
	}
	s.logger.Error("creating article failed: every generated key collided on insert", "attempts", attempts)
	return Article{}, fmt.Errorf("creating article: %w after %d inserts", ErrKeySpaceExhausted, attempts)
}

// Edit replaces an article's content. The previous version is pushed
// onto the revision list when title, content, or tags change; an edit
// that changes none of them writes nothing and returns NoOp.
func (s *Service) Edit(ctx context.Context, input EditInput) (EditResult, error) {
	if input.Key == "" {
		s.logger.Error("editing article failed: key is required")
		return EditResult{}, fmt.Errorf("editing article: %w: key is required", ErrInvalidArgument)
	}

	previous, found, err := s.load(ctx, input.Key)
	if err != nil {
		return EditResult{}, fmt.Errorf("editing article %s: %w", input.Key, err)
	}
	if !found {
		s.logger.Error("editing article failed: article does not exist", "key", input.Key)
		return EditResult{}, fmt.Errorf("editing article %s: %w", input.Key, ErrNotFound)
	}

	if input.CreateDate != nil && !input.CreateDate.Equal(previous.CreateDate) {
		s.logger.Error("editing article failed: createDate is write-once",
			"key", input.Key,
			"stored", previous.CreateDate,
			"requested", *input.CreateDate,
		)
		return EditResult{}, fmt.Errorf("editing article %s: %w: createDate cannot change", input.Key, ErrInvalidArgument)
	}

	changed := Diff(previous.Fields(), input.Fields)
	if len(changed) == 0 {
		s.logger.Info("article unchanged", "key", previous.Key, "title", previous.DisplayTitle())
		return EditResult{Article: previous, NoOp: true}, nil
	}

	editDate := s.clock.Now()
	next := Article{
		Key:            previous.Key,
		Type:           TypeArticle,
		Title:          input.Title,
		Content:        input.Content,
		Introduction:   input.Introduction,
		Tags:           normalizeTags(input.Tags),
		Published:      previous.Published,
		CreateDate:     previous.CreateDate,
		EditDate:       editDate,
		HistoryContent: s.history.Record(previous, changed, editDate),
	}
	if input.Published != nil {
		next.Published = *input.Published
	}

	record, err := s.replace(ctx, next)
	if err != nil {
		s.logger.Error("editing article failed", "key", next.Key, "error", err)
		return EditResult{}, fmt.Errorf("editing article %s: %w", next.Key, err)
	}
	edited, err := decode(record)
	if err != nil {
		return EditResult{}, err
	}

	s.logger.Info("article edited",
		"key", edited.Key,
		"title", edited.DisplayTitle(),
		"changed", changed,
		"revisions", len(edited.HistoryContent),
	)
	return EditResult{Article: edited, Changed: changed}, nil
}

// Delete removes an article. Deleting is terminal: the key may later
// be reissued to a new article.
func (s *Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		s.logger.Error("deleting article failed: key is required")
		return fmt.Errorf("deleting article: %w: key is required", ErrInvalidArgument)
	}

	article, found, err := s.load(ctx, key)
	if err != nil {
		return fmt.Errorf("deleting article %s: %w", key, err)
	}
	if !found {
		s.logger.Warn("deleting article failed: article does not exist", "key", key)
		return fmt.Errorf("deleting article %s: %w", key, ErrNotFound)
	}

	if _, err := s.store.Remove(ctx, docstore.Filter{"key": key, "type": TypeArticle}); err != nil {
		s.logger.Error("deleting article failed", "key", key, "error", err)
		return fmt.Errorf("deleting article %s: %w", key, err)
	}
	s.logger.Info("article deleted", "key", key, "title", article.DisplayTitle())
	return nil
}

// List returns every article, newest createDate first. Articles created
// at the same instant are ordered by key.
func (s *Service) List(ctx context.Context) ([]Article, error) {
	return s.find(ctx, docstore.Filter{"type": TypeArticle})
}

// ListPublished returns the published subset of List, in the same
// order.
func (s *Service) ListPublished(ctx context.Context) ([]Article, error) {
	return s.find(ctx, docstore.Filter{"type": TypeArticle, "published": true})
}

// Get returns the articles matching filter. Match.Single is set when
// there is exactly one.
func (s *Service) Get(ctx context.Context, filter Filter) (Match, error) {
	scoped := maps.Clone(filter)
	if scoped == nil {
		scoped = docstore.Filter{}
	}
	scoped["type"] = TypeArticle

	articles, err := s.find(ctx, scoped)
	if err != nil {
		return Match{}, err
	}
	match := Match{Articles: articles}
	if len(articles) == 1 {
		match.Single = &match.Articles[0]
	}
	return match, nil
}

// TogglePublish flips an article between draft and published and
// returns the new state. editDate and history are untouched.
func (s *Service) TogglePublish(ctx context.Context, key string) (bool, error) {
	article, found, err := s.load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("toggling publish state of %s: %w", key, err)
	}
	if !found {
		s.logger.Warn("toggling publish state failed: article does not exist", "key", key)
		return false, fmt.Errorf("toggling publish state of %s: %w", key, ErrNotFound)
	}

	article.Published = !article.Published
	record, err := s.replace(ctx, article)
	if err != nil {
		s.logger.Error("toggling publish state failed", "key", key, "error", err)
		return false, fmt.Errorf("toggling publish state of %s: %w", key, err)
	}
	stored, err := decode(record)
	if err != nil {
		return false, err
	}

	s.logger.Info("article publish state changed",
		"key", key,
		"title", stored.DisplayTitle(),
		"published", stored.Published,
	)
	return stored.Published, nil
}

// IsPublished reports an article's publish state.
func (s *Service) IsPublished(ctx context.Context, key string) (bool, error) {
	article, found, err := s.load(ctx, key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("article %s: %w", key, ErrNotFound)
	}
	return article.Published, nil
}

// Statistics counts articles and distinct tags.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	articles, err := s.List(ctx)
	if err != nil {
		return Statistics{}, err
	}
	tags := make(map[string]struct{})
	for _, article := range articles {
		for _, tag := range article.Tags {
			tags[tag] = struct{}{}
		}
	}
	return Statistics{ArticleCount: len(articles), DistinctTagCount: len(tags)}, nil
}

// load fetches one article by key.
func (s *Service) load(ctx context.Context, key string) (Article, bool, error) {
	records, err := s.store.Find(ctx, docstore.Filter{"key": key, "type": TypeArticle})
	if err != nil {
		return Article{}, false, err
	}
	if len(records) == 0 {
		return Article{}, false, nil
	}
	article, err := decode(records[0])
	if err != nil {
		return Article{}, false, err
	}
	return article, true, nil
}

// replace writes article over the stored record with the same key.
// A record that vanished since it was loaded is reported as not found.
func (s *Service) replace(ctx context.Context, article Article) (docstore.Record, error) {
	record, err := s.store.Update(ctx, docstore.Filter{"key": article.Key, "type": TypeArticle}, article)
	if errors.Is(err, docstore.ErrNoMatch) {
		return nil, ErrNotFound
	}
	return record, err
}

func (s *Service) find(ctx context.Context, filter docstore.Filter) ([]Article, error) {
	records, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(records))
	for _, record := range records {
		article, err := decode(record)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	slices.SortFunc(articles, func(a, b Article) int {
		if c := b.CreateDate.Compare(a.CreateDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return articles, nil
}

func decode(record docstore.Record) (Article, error) {
	var article Article
	if err := record.Decode(&article); err != nil {
		return Article{}, fmt.Errorf("%w: decoding article %q: %w", docstore.ErrStorage, record.String("key"), err)
	}
	return article, nil
}
