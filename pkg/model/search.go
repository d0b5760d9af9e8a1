package model

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/archivelab/coral/internal/logger"
	"github.com/archivelab/coral/pkg/store"
)

// stopWords are terms too common to index or query.
var stopWords = map[string]struct{}{
	"a":   {},
	"the": {},
	"of":  {},
	"is":  {},
}

// IsStopWord reports whether a term is excluded from indexing and querying.
func IsStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}

// normalizeTerms lowercases a field value, treats underscores as spaces and
// splits on spaces. "Test_Object" yields {"test", "object"}.
func normalizeTerms(value string) []string {
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	var terms []string
	for _, t := range strings.Split(value, " ") {
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Document is anything the term index can ingest. SearchField returns the
// raw value of one indexable field.
type Document interface {
	SearchID() string
	SearchType() string
	SearchField(field string) string
}

// Resolver turns a search hit back into a presentable object. A (nil, nil)
// return drops the hit: the indexed object no longer exists or its type is
// not resolvable.
type Resolver interface {
	ResolveSearchHit(ctx context.Context, objectType, objectID string) (map[string]any, error)
}

// searchRow is one stored (term, object) posting.
type searchRow struct {
	ID         string `json:"id"`
	Term       string `json:"term"`
	ObjectType string `json:"object_type"`
	ObjectID   string `json:"object_id"`
}

// SearchResult is one ranked search hit.
type SearchResult struct {
	HitCount int
	Object   map[string]any
}

// SearchIndex is the inverted term index over namespace entries. Rows are
// stored twice: by term for queries and by object for reset.
type SearchIndex struct {
	store    store.Store
	resolver Resolver
}

// NewSearchIndex creates a term index over the given store, resolving hits
// through r.
func NewSearchIndex(s store.Store, r Resolver) *SearchIndex {
	return &SearchIndex{store: s, resolver: r}
}

// SearchIndex returns a term index bound to the engine's store, with the
// engine itself resolving hits.
func (m *Model) SearchIndex() *SearchIndex {
	return NewSearchIndex(m.store, m)
}

// ResolveSearchHit implements Resolver over the namespace: collections and
// resources resolve to their payload projection, anything else (including
// entries deleted since indexing) drops the hit.
func (m *Model) ResolveSearchHit(ctx context.Context, objectType, objectID string) (map[string]any, error) {
	switch objectType {
	case classCollection:
		c, err := m.FindCollectionByID(ctx, objectID)
		if err != nil {
			if IsCode(err, ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		d := c.ToDict(nil)
		d["type"] = classCollection
		return d, nil
	case classResource:
		r, err := m.FindResourceByID(ctx, objectID)
		if err != nil {
			if IsCode(err, ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		d := r.ToDict(nil)
		d["type"] = classResource
		return d, nil
	default:
		return nil, nil
	}
}

// Index ingests the named fields of a document and returns the number of
// postings written. Stop words are skipped. Indexing the same document
// again without a Reset duplicates its postings.
func (si *SearchIndex) Index(ctx context.Context, doc Document, fields []string) (int, error) {
	count := 0
	for _, field := range fields {
		for _, term := range normalizeTerms(doc.SearchField(field)) {
			if IsStopWord(term) {
				continue
			}
			row := searchRow{
				ID:         NewID(),
				Term:       term,
				ObjectType: doc.SearchType(),
				ObjectID:   doc.SearchID(),
			}
			value, err := json.Marshal(row)
			if err != nil {
				return count, err
			}
			termKey := keySearchTerm(term, row.ID)
			if err := si.store.Set(ctx, termKey, value); err != nil {
				return count, err
			}
			if err := si.store.Set(ctx, keySearchObject(row.ObjectID, row.ID), termKey); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// Find queries the index with a list of term strings and returns resolved
// hits ranked by hit count, highest first. Each input string goes through
// the same normalization as indexing; stop words are dropped.
func (si *SearchIndex) Find(ctx context.Context, terms []string) ([]SearchResult, error) {
	type hit struct {
		objectType string
		count      int
	}
	hits := map[string]*hit{}

	for _, raw := range terms {
		for _, term := range normalizeTerms(raw) {
			if IsStopWord(term) {
				continue
			}
			err := si.store.Scan(ctx, keySearchTermPrefix(term), func(key, value []byte) error {
				var row searchRow
				if jsonErr := json.Unmarshal(value, &row); jsonErr != nil {
					logger.Warn("skipping undecodable search row %q: %v", key, jsonErr)
					return nil
				}
				if h, ok := hits[row.ObjectID]; ok {
					h.count++
				} else {
					hits[row.ObjectID] = &hit{objectType: row.ObjectType, count: 1}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}

	ids := make([]string, 0, len(hits))
	for id := range hits {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var results []SearchResult
	for _, id := range ids {
		h := hits[id]
		obj, err := si.resolver.ResolveSearchHit(ctx, h.objectType, id)
		if err != nil {
			return nil, err
		}
		if obj == nil {
			continue
		}
		obj["hit_count"] = h.count
		results = append(results, SearchResult{HitCount: h.count, Object: obj})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].HitCount > results[j].HitCount })
	return results, nil
}

// Reset removes every posting of an object, one row at a time through the
// reverse index. Resetting an unindexed object is a no-op.
func (si *SearchIndex) Reset(ctx context.Context, objectID string) error {
	type pair struct{ objectKey, termKey []byte }
	var pairs []pair
	err := si.store.Scan(ctx, keySearchObjectPrefix(objectID), func(key, value []byte) error {
		k := make([]byte, len(key))
		copy(k, key)
		v := make([]byte, len(value))
		copy(v, value)
		pairs = append(pairs, pair{objectKey: k, termKey: v})
		return nil
	})
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := si.store.Delete(ctx, p.termKey); err != nil {
			return err
		}
		if err := si.store.Delete(ctx, p.objectKey); err != nil {
			return err
		}
	}
	return nil
}
