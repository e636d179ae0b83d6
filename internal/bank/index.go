package bank

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// Index groups questions by topic and level. It is read-only after Build
// and safe to share across sessions.
type Index struct {
	byTopic map[string]map[int][]Question
	byID    map[string]Question
	topics  []string

	mu  sync.Mutex
	rng *rand.Rand
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithRand makes NextUnused draw from r instead of the global source.
func WithRand(r *rand.Rand) IndexOption {
	return func(idx *Index) { idx.rng = r }
}

// Build indexes the questions by (topic, level). Topic order is the order in
// which topics are first seen. Build never fails; an empty input yields an
// empty index.
func Build(qs []Question, opts ...IndexOption) *Index {
	idx := &Index{
		byTopic: make(map[string]map[int][]Question),
		byID:    make(map[string]Question, len(qs)),
	}
	for _, o := range opts {
		o(idx)
	}

	for _, q := range qs {
		levels, ok := idx.byTopic[q.Topic]
		if !ok {
			levels = make(map[int][]Question)
			idx.byTopic[q.Topic] = levels
			idx.topics = append(idx.topics, q.Topic)
		}
		levels[q.Level] = append(levels[q.Level], q)
		idx.byID[q.ID] = q
	}
	return idx
}

// NextUnused returns a uniformly random question from bucket (topic, level)
// whose ID is not in used. It returns false when the bucket is empty or
// exhausted. used is only read.
func (idx *Index) NextUnused(topic string, level int, used map[string]bool) (Question, bool) {
	bucket := idx.byTopic[topic][level]
	candidates := make([]Question, 0, len(bucket))
	for _, q := range bucket {
		if !used[q.ID] {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return Question{}, false
	}
	return candidates[idx.intN(len(candidates))], true
}

func (idx *Index) intN(n int) int {
	if idx.rng == nil {
		return rand.IntN(n)
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.rng.IntN(n)
}

// TopicOrder returns the topics in first-seen order.
func (idx *Index) TopicOrder() []string {
	return slices.Clone(idx.topics)
}

// HasTopic reports whether the index contains the topic.
func (idx *Index) HasTopic(topic string) bool {
	_, ok := idx.byTopic[topic]
	return ok
}

// Levels returns the levels present for topic in ascending order.
func (idx *Index) Levels(topic string) []int {
	levels := make([]int, 0, MaxLevel)
	for l := range idx.byTopic[topic] {
		levels = append(levels, l)
	}
	slices.Sort(levels)
	return levels
}

// StartLevel is the level a topic opens at: 2 when present, otherwise the
// lowest level available.
func (idx *Index) StartLevel(topic string) (int, bool) {
	levels := idx.Levels(topic)
	if len(levels) == 0 {
		return 0, false
	}
	if slices.Contains(levels, 2) {
		return 2, true
	}
	return levels[0], true
}

// Count returns the number of questions in topic across all levels.
func (idx *Index) Count(topic string) int {
	n := 0
	for _, qs := range idx.byTopic[topic] {
		n += len(qs)
	}
	return n
}

// Bucket returns a copy of the questions at (topic, level).
func (idx *Index) Bucket(topic string, level int) []Question {
	return slices.Clone(idx.byTopic[topic][level])
}

// Question looks a question up by ID.
func (idx *Index) Question(id string) (Question, bool) {
	q, ok := idx.byID[id]
	return q, ok
}

// Len returns the total number of indexed questions.
func (idx *Index) Len() int {
	n := 0
	for _, t := range idx.topics {
		n += idx.Count(t)
	}
	return n
}

// NeedsJudge reports whether any question must be graded by the judge.
func (idx *Index) NeedsJudge() bool {
	for _, q := range idx.byID {
		if !q.Kind.IsFixed() {
			return true
		}
	}
	return false
}
