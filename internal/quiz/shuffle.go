package quiz

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// ShuffleService produces randomized question and option orderings while
// preserving which options are correct. Inputs are never mutated; every
// method returns fresh slices or a derived Question.
type ShuffleService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewShuffleService() *ShuffleService {
	return NewShuffleServiceWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewShuffleServiceWithSource injects the randomness source, which tests
// use for deterministic permutations.
func NewShuffleServiceWithSource(src rand.Source) *ShuffleService {
	return &ShuffleService{rng: rand.New(src)}
}

func (s *ShuffleService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// ShuffleQuestions returns a Fisher-Yates permutation of the input as a new
// slice. A single-element or empty input comes back unchanged, but still as
// a fresh slice.
func (s *ShuffleService) ShuffleQuestions(questions []Question) []Question {
	shuffled := make([]Question, len(questions))
	copy(shuffled, questions)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// ShuffleOptionsWithMapping permutes the options and returns the mapping
// from each option's original index to its new position:
// shuffled[mapping[i]] is the option that started at index i. The mapping
// is the inverse of the permutation applied to the slice, so it must be
// derived by inversion, not reused directly.
func (s *ShuffleService) ShuffleOptionsWithMapping(options []Option) ([]Option, []int) {
	n := len(options)
	shuffled := make([]Option, n)
	copy(shuffled, options)

	// perm[newIndex] = originalIndex, maintained through the same swaps.
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := s.intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		perm[i], perm[j] = perm[j], perm[i]
	}

	mapping := make([]int, n)
	for newIdx, origIdx := range perm {
		mapping[origIdx] = newIdx
	}
	return shuffled, mapping
}

// MapAnswerIndices translates original correct-answer indices through an
// index mapping. An out-of-range index here means mismatched option and
// mapping slices, a programming fault, so it is an error rather than a
// validation result. Output is sorted ascending for stable comparison.
func (s *ShuffleService) MapAnswerIndices(indices []int, indexMapping []int) ([]int, error) {
	mapped := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(indexMapping) {
			return nil, fmt.Errorf("Invalid answer index %d for options array of length %d", idx, len(indexMapping))
		}
		mapped = append(mapped, indexMapping[idx])
	}
	sort.Ints(mapped)
	return mapped, nil
}

// ShuffleQuestionOptions derives a new Question with shuffled options and
// remapped correct answers. A question with no options or no correct
// answers is returned as-is: shuffling it is pointless and must not risk
// corrupting the correct-answer set.
func (s *ShuffleService) ShuffleQuestionOptions(q Question) (Question, error) {
	if q.OptionCount() == 0 || len(q.CorrectAnswers()) == 0 {
		return q, nil
	}

	shuffled, mapping := s.ShuffleOptionsWithMapping(q.Options())
	remapped, err := s.MapAnswerIndices(q.CorrectAnswers(), mapping)
	if err != nil {
		return Question{}, err
	}

	example, hasExample := q.CodeExample()
	data := QuestionData{
		ID:             q.ID(),
		Text:           q.Text(),
		Options:        shuffled,
		CorrectAnswers: remapped,
		Explanation:    q.Explanation(),
		Category:       q.Category(),
		Difficulty:     q.Difficulty(),
	}
	if hasExample {
		data.CodeExample = &example
	}
	return NewQuestion(data)
}
