// Package taxonomy derives the cross-sections of a parsed document set:
// category and tag buckets, the pinned listing, the chronological post
// listing, and the ordered tab listing. The index is rebuilt from scratch on
// every run so it can never drift from the source tree.
package taxonomy

import (
	"sort"

	slug "github.com/goliatone/go-slug"

	"github.com/pagemill/pagemill/internal/logging"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

// Bucket groups the documents declaring one taxonomy term. Name keeps the
// authored spelling of the first document that used the term; Slug is the
// URL-safe key every route derives from.
type Bucket struct {
	Name string
	Slug string
	Docs []*interfaces.Document
}

// Index is the full derived view over one document snapshot. Listings are
// never nil, so templates can range over an empty site without guards.
type Index struct {
	// Posts holds every post, newest first.
	Posts []*interfaces.Document
	// Tabs holds navigation pages ascending by their order key; tabs
	// without an explicit order come after all ordered ones.
	Tabs []*interfaces.Document
	// Pinned holds pinned posts, most recent first.
	Pinned []*interfaces.Document
	// Categories and Tags are name-sorted buckets.
	Categories []Bucket
	Tags       []Bucket
}

// Category returns the bucket for the given slug, or nil.
func (ix *Index) Category(key string) *Bucket {
	return findBucket(ix.Categories, key)
}

// Tag returns the bucket for the given slug, or nil.
func (ix *Index) Tag(key string) *Bucket {
	return findBucket(ix.Tags, key)
}

func findBucket(buckets []Bucket, key string) *Bucket {
	for i := range buckets {
		if buckets[i].Slug == key {
			return &buckets[i]
		}
	}
	return nil
}

// Indexer builds Index values. It is stateless apart from its collaborators
// and safe to reuse across builds.
type Indexer struct {
	slugs  slug.Normalizer
	logger interfaces.Logger
}

// Option customises an Indexer.
type Option func(*Indexer)

// WithLogger overrides the no-op default logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndexer constructs an Indexer with the default slug normalizer.
func NewIndexer(opts ...Option) *Indexer {
	ix := &Indexer{
		slugs:  slug.Default(),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Build derives the index for the supplied documents. The input order does
// not matter; every listing applies its own deterministic ordering so that
// identical document sets always produce identical indexes.
func (ix *Indexer) Build(docs []*interfaces.Document) *Index {
	index := &Index{
		Posts:      []*interfaces.Document{},
		Tabs:       []*interfaces.Document{},
		Pinned:     []*interfaces.Document{},
		Categories: []Bucket{},
		Tags:       []Bucket{},
	}

	categories := newBucketSet()
	tags := newBucketSet()

	for _, doc := range docs {
		if doc == nil {
			continue
		}

		switch doc.Kind {
		case interfaces.KindPost:
			index.Posts = append(index.Posts, doc)
			if doc.FrontMatter.Pin {
				index.Pinned = append(index.Pinned, doc)
			}
		case interfaces.KindTab:
			index.Tabs = append(index.Tabs, doc)
		}

		for _, name := range doc.FrontMatter.Categories {
			categories.add(ix.slugify(name), name, doc)
		}
		for _, name := range doc.FrontMatter.Tags {
			tags.add(ix.slugify(name), name, doc)
		}
	}

	sortNewestFirst(index.Posts)
	sortNewestFirst(index.Pinned)
	sortTabs(index.Tabs)

	index.Categories = categories.ordered()
	index.Tags = tags.ordered()

	ix.logger.Debug("taxonomy index built",
		"posts", len(index.Posts),
		"tabs", len(index.Tabs),
		"pinned", len(index.Pinned),
		"categories", len(index.Categories),
		"tags", len(index.Tags),
	)

	return index
}

func (ix *Indexer) slugify(name string) string {
	normalized, err := ix.slugs.Normalize(name)
	if err != nil || normalized == "" {
		return name
	}
	return normalized
}

// sortNewestFirst orders documents by their sort timestamp descending with
// the file path as the tie-break so equal timestamps stay reproducible.
func sortNewestFirst(docs []*interfaces.Document) {
	sort.Slice(docs, func(i, j int) bool {
		left := docs[i].SortTime()
		right := docs[j].SortTime()
		if left.Equal(right) {
			return docs[i].FilePath < docs[j].FilePath
		}
		return left.After(right)
	})
}

// sortTabs orders navigation pages ascending by their order key. Unordered
// tabs sort after every ordered tab, among themselves by file path.
func sortTabs(docs []*interfaces.Document) {
	sort.Slice(docs, func(i, j int) bool {
		left, right := docs[i], docs[j]
		switch {
		case left.FrontMatter.HasOrder() && right.FrontMatter.HasOrder():
			if *left.FrontMatter.Order != *right.FrontMatter.Order {
				return *left.FrontMatter.Order < *right.FrontMatter.Order
			}
			return left.FilePath < right.FilePath
		case left.FrontMatter.HasOrder():
			return true
		case right.FrontMatter.HasOrder():
			return false
		default:
			return left.FilePath < right.FilePath
		}
	})
}

type bucketSet struct {
	byKey map[string]*Bucket
}

func newBucketSet() *bucketSet {
	return &bucketSet{byKey: map[string]*Bucket{}}
}

func (s *bucketSet) add(key, name string, doc *interfaces.Document) {
	bucket, ok := s.byKey[key]
	if !ok {
		bucket = &Bucket{Name: name, Slug: key}
		s.byKey[key] = bucket
	}
	bucket.Docs = append(bucket.Docs, doc)
}

// ordered flattens the set into name-sorted buckets with newest-first
// document lists.
func (s *bucketSet) ordered() []Bucket {
	buckets := make([]Bucket, 0, len(s.byKey))
	for _, bucket := range s.byKey {
		sortNewestFirst(bucket.Docs)
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Name == buckets[j].Name {
			return buckets[i].Slug < buckets[j].Slug
		}
		return buckets[i].Name < buckets[j].Name
	})
	return buckets
}
