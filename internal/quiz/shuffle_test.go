package quiz

import (
	"math/rand"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func optionIDs(options []Option) []string {
	ids := make([]string, len(options))
	for i, o := range options {
		ids[i] = o.ID()
	}
	return ids
}

func TestShuffleQuestionsIsPermutationAndCopies(t *testing.T) {
	s := NewShuffleServiceWithSource(rand.NewSource(1))

	questions := []Question{
		mustQuestion(t, []int{0}),
		mustQuestion(t, []int{1}),
		mustQuestion(t, []int{2}),
		mustQuestion(t, []int{3}),
	}
	before := make([]Question, len(questions))
	copy(before, questions)

	shuffled := s.ShuffleQuestions(questions)
	if len(shuffled) != len(questions) {
		t.Fatalf("length changed: %d", len(shuffled))
	}
	if !reflect.DeepEqual(questions, before) {
		t.Fatal("input slice was mutated")
	}

	want := map[int]int{}
	got := map[int]int{}
	for i := range questions {
		want[questions[i].CorrectAnswers()[0]]++
		got[shuffled[i].CorrectAnswers()[0]]++
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("not a permutation: %v vs %v", got, want)
	}
}

func TestShuffleQuestionsDegenerateInputs(t *testing.T) {
	s := NewShuffleService()

	empty := s.ShuffleQuestions(nil)
	if len(empty) != 0 {
		t.Fatalf("empty input produced %d elements", len(empty))
	}

	one := []Question{mustQuestion(t, []int{1})}
	out := s.ShuffleQuestions(one)
	if len(out) != 1 || out[0].ID() != one[0].ID() {
		t.Fatal("single-element shuffle changed content")
	}
	if &out[0] == &one[0] {
		t.Fatal("expected a fresh slice, not the input")
	}
}

func TestShuffleOptionsWithMappingProperties(t *testing.T) {
	// Exercise several seeds so the permutation and inverse-mapping
	// properties hold beyond one lucky draw.
	for seed := int64(0); seed < 25; seed++ {
		s := NewShuffleServiceWithSource(rand.NewSource(seed))
		options := fourOptions(t)

		shuffled, mapping := s.ShuffleOptionsWithMapping(options)

		if len(shuffled) != len(options) || len(mapping) != len(options) {
			t.Fatalf("seed %d: bad lengths %d/%d", seed, len(shuffled), len(mapping))
		}

		// Same multiset of ids.
		wantIDs := optionIDs(options)
		gotIDs := optionIDs(shuffled)
		sortedWant := append([]string(nil), wantIDs...)
		sortedGot := append([]string(nil), gotIDs...)
		sort.Strings(sortedWant)
		sort.Strings(sortedGot)
		if !reflect.DeepEqual(sortedWant, sortedGot) {
			t.Fatalf("seed %d: not a permutation: %v", seed, gotIDs)
		}

		// Mapping is itself a permutation of [0, n).
		seen := make([]bool, len(mapping))
		for _, m := range mapping {
			if m < 0 || m >= len(mapping) || seen[m] {
				t.Fatalf("seed %d: mapping is not a permutation: %v", seed, mapping)
			}
			seen[m] = true
		}

		// Inverse property: shuffled[mapping[i]] is the option that was at i.
		for i, o := range options {
			if shuffled[mapping[i]].ID() != o.ID() {
				t.Fatalf("seed %d: mapping[%d]=%d does not point at %q", seed, i, mapping[i], o.ID())
			}
		}
	}
}

func TestMapAnswerIndices(t *testing.T) {
	s := NewShuffleService()

	got, err := s.MapAnswerIndices([]int{0, 2}, []int{3, 1, 0, 2})
	if err != nil {
		t.Fatalf("MapAnswerIndices: %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 3}) {
		t.Fatalf("got %v, want [0 3]", got)
	}

	_, err = s.MapAnswerIndices([]int{3}, []int{1, 0})
	if err == nil {
		t.Fatal("expected error for out-of-range original index")
	}
	if !strings.Contains(err.Error(), "Invalid answer index 3 for options array of length 2") {
		t.Fatalf("unexpected error message: %v", err)
	}

	_, err = s.MapAnswerIndices([]int{-1}, []int{0, 1})
	if err == nil {
		t.Fatal("expected error for negative original index")
	}
}

func TestShuffleQuestionOptionsPreservesCorrectness(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		s := NewShuffleServiceWithSource(rand.NewSource(seed))
		q := mustQuestion(t, []int{1, 3})

		shuffledQ, err := s.ShuffleQuestionOptions(q)
		if err != nil {
			t.Fatalf("seed %d: ShuffleQuestionOptions: %v", seed, err)
		}

		// Texts of the correct options survive the permutation as a set.
		wantTexts := map[string]bool{}
		for _, idx := range q.CorrectAnswers() {
			o, _ := q.Option(idx)
			wantTexts[o.Text()] = true
		}
		gotTexts := map[string]bool{}
		for _, idx := range shuffledQ.CorrectAnswers() {
			o, ok := shuffledQ.Option(idx)
			if !ok {
				t.Fatalf("seed %d: remapped index %d out of range", seed, idx)
			}
			gotTexts[o.Text()] = true
		}
		if !reflect.DeepEqual(wantTexts, gotTexts) {
			t.Fatalf("seed %d: correct texts changed: %v vs %v", seed, gotTexts, wantTexts)
		}

		// Scalar fields carry over; the original stays untouched.
		if shuffledQ.ID() != q.ID() || shuffledQ.Category() != q.Category() || shuffledQ.Difficulty() != q.Difficulty() {
			t.Fatalf("seed %d: scalar fields changed", seed)
		}
		if got := q.CorrectAnswers(); !reflect.DeepEqual(got, []int{1, 3}) {
			t.Fatalf("seed %d: original question mutated: %v", seed, got)
		}
	}
}

func TestShuffleQuestionOptionsKeepsCodeExample(t *testing.T) {
	s := NewShuffleServiceWithSource(rand.NewSource(7))

	example, err := NewCodeExample("Console.WriteLine(\"x\");", "csharp", "x")
	if err != nil {
		t.Fatalf("NewCodeExample: %v", err)
	}
	q, err := NewQuestion(QuestionData{
		ID:             "q-ex",
		Text:           "What prints?",
		Options:        fourOptions(t),
		CorrectAnswers: []int{2},
		Explanation:    "e",
		Category:       "console",
		Difficulty:     "easy",
		CodeExample:    &example,
	})
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}

	shuffledQ, err := s.ShuffleQuestionOptions(q)
	if err != nil {
		t.Fatalf("ShuffleQuestionOptions: %v", err)
	}
	got, ok := shuffledQ.CodeExample()
	if !ok || got != example {
		t.Fatal("code example lost or changed by shuffling")
	}
}
