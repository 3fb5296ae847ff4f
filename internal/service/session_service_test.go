package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"interview_card_backend/internal/model"
	"interview_card_backend/internal/repository"
	"interview_card_backend/internal/util"
	"testing"

	"gorm.io/gorm"
)

func newSessionService(t *testing.T, db *gorm.DB) (*SessionService, *QuestionService) {
	t.Helper()
	questions := newQuestionService(t, db)
	svc := NewSessionService(
		repository.NewSessionRepository(db),
		questions,
		repository.NewProgressRepository(db),
		questions.Cfg,
	)
	return svc, questions
}

func startSession(t *testing.T, svc *SessionService, req StartSessionRequest) *model.StudySession {
	t.Helper()
	session, err := svc.StartSession(1, req)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return session
}

func TestStartSessionFreezesQuestionOrder(t *testing.T) {
	db := newTestDB(t)
	svc, questions := newSessionService(t, db)
	bank := seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "choice"})

	if session.Status != model.SessionActive {
		t.Errorf("status = %q, want active", session.Status)
	}
	if session.TotalQuestions != 3 {
		t.Errorf("total = %d, want 3", session.TotalQuestions)
	}

	var order []uint
	if err := json.Unmarshal(session.QuestionOrder, &order); err != nil {
		t.Fatalf("order column: %v", err)
	}
	rows, err := questions.ListQuestionsByBank(bank.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := make(map[uint]bool, len(rows))
	for _, row := range rows {
		want[row.ID] = true
	}
	if len(order) != len(rows) {
		t.Fatalf("order holds %d ids, want %d", len(order), len(rows))
	}
	seen := make(map[uint]bool, len(order))
	for _, id := range order {
		if !want[id] {
			t.Errorf("order contains unknown id %d", id)
		}
		if seen[id] {
			t.Errorf("order repeats id %d", id)
		}
		seen[id] = true
	}
}

func TestStartSessionHonorsLimit(t *testing.T) {
	svc, questions := newSessionService(t, newTestDB(t))
	seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "flip", Limit: 2})
	if session.TotalQuestions != 2 {
		t.Errorf("total = %d, want 2", session.TotalQuestions)
	}
}

func TestStartSessionEmptyCategory(t *testing.T) {
	svc, _ := newSessionService(t, newTestDB(t))
	if _, err := svc.StartSession(1, StartSessionRequest{Category: "golang", Mode: "choice"}); !errors.Is(err, util.ErrNoQuestions) {
		t.Fatalf("got %v, want ErrNoQuestions", err)
	}
}

func TestChoiceSessionFullRun(t *testing.T) {
	db := newTestDB(t)
	svc, questions := newSessionService(t, db)
	seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "choice"})

	for i := 0; i < 3; i++ {
		current, err := svc.CurrentQuestion(1, session.ID)
		if err != nil {
			t.Fatalf("question %d: %v", i, err)
		}
		if current.Position != i {
			t.Errorf("position = %d, want %d", current.Position, i)
		}

		// Answer with the true correct set, recovered from storage.
		row, err := questions.Repo.FindQuestionByID(current.Question.ID)
		if err != nil {
			t.Fatalf("load row: %v", err)
		}
		q, err := RowToQuizQuestion(*row)
		if err != nil {
			t.Fatalf("assemble: %v", err)
		}

		result, err := svc.SubmitAnswer(1, session.ID, q.CorrectAnswers())
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if !result.Result.Valid || !result.Result.Correct {
			t.Fatalf("submission %d not graded correct: %+v", i, result.Result)
		}
		if result.Explanation == "" {
			t.Errorf("submission %d missing explanation feedback", i)
		}
		if wantDone := i == 2; result.Completed != wantDone {
			t.Errorf("submission %d completed = %v, want %v", i, result.Completed, wantDone)
		}
	}

	final, err := svc.GetSession(1, session.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if final.Status != model.SessionCompleted {
		t.Errorf("status = %q, want completed", final.Status)
	}
	if final.CorrectCount != 3 || final.AnsweredCount != 3 {
		t.Errorf("counters = %d/%d, want 3/3", final.CorrectCount, final.AnsweredCount)
	}

	progress, err := repository.NewProgressRepository(db).ListByUser(1)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress) != 1 || progress[0].Correct != 3 || progress[0].Answered != 3 {
		t.Errorf("unexpected progress rows: %+v", progress)
	}
}

func TestSubmitInvalidAnswerDoesNotAdvance(t *testing.T) {
	svc, questions := newSessionService(t, newTestDB(t))
	seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "choice"})

	// The shuffled order decides which question sits at the cursor, so the
	// out-of-bounds message is phrased against its actual option count.
	current, err := svc.CurrentQuestion(1, session.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	maxIdx := len(current.Question.Options) - 1

	cases := []struct {
		name     string
		selected []int
		message  string
	}{
		{"empty", []int{}, "At least one answer must be selected"},
		{"negative", []int{-1}, "Answer index cannot be negative, got: -1"},
		{"out of bounds", []int{10}, fmt.Sprintf("Answer index 10 is out of bounds. Maximum valid index is %d", maxIdx)},
		{"duplicates", []int{0, 0}, "Duplicate answer selections are not allowed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.SubmitAnswer(1, session.ID, tc.selected)
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if result.Result.Valid {
				t.Fatal("submission should be invalid")
			}
			found := false
			for _, msg := range result.Result.Errors {
				if msg == tc.message {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v missing %q", result.Result.Errors, tc.message)
			}

			reloaded, err := svc.GetSession(1, session.ID)
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if reloaded.CurrentIndex != 0 || reloaded.AnsweredCount != 0 {
				t.Errorf("invalid submission advanced the session: index=%d answered=%d",
					reloaded.CurrentIndex, reloaded.AnsweredCount)
			}
		})
	}
}

func TestSubmitAnswerWrongMode(t *testing.T) {
	svc, questions := newSessionService(t, newTestDB(t))
	seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "flip"})
	if _, err := svc.SubmitAnswer(1, session.ID, []int{0}); !errors.Is(err, util.ErrWrongSessionMode) {
		t.Fatalf("got %v, want ErrWrongSessionMode", err)
	}
	if _, err := svc.RevealAnswer(1, session.ID); err != nil {
		t.Fatalf("reveal in flip mode: %v", err)
	}
}

func TestFlipSessionFullRun(t *testing.T) {
	svc, questions := newSessionService(t, newTestDB(t))
	seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "flip"})

	marks := []bool{true, false, true}
	for i, knewIt := range marks {
		reveal, err := svc.RevealAnswer(1, session.ID)
		if err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
		if len(reveal.CorrectAnswers) == 0 || reveal.Explanation == "" {
			t.Errorf("reveal %d missing answer content: %+v", i, reveal)
		}

		updated, err := svc.SelfMark(1, session.ID, knewIt)
		if err != nil {
			t.Fatalf("mark %d: %v", i, err)
		}
		if updated.CurrentIndex != i+1 {
			t.Errorf("mark %d left index at %d", i, updated.CurrentIndex)
		}
	}

	summary, err := svc.FinishSession(1, session.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if summary.Session.Status != model.SessionCompleted {
		t.Errorf("status = %q, want completed", summary.Session.Status)
	}
	if summary.Session.CorrectCount != 2 {
		t.Errorf("correct = %d, want 2", summary.Session.CorrectCount)
	}
	if len(summary.Answers) != 3 {
		t.Errorf("recorded %d answers, want 3", len(summary.Answers))
	}
	if want := 2.0 / 3.0; summary.Accuracy < want-0.001 || summary.Accuracy > want+0.001 {
		t.Errorf("accuracy = %f, want %f", summary.Accuracy, want)
	}
	for _, a := range summary.Answers {
		if !a.SelfMarked {
			t.Error("flip-mode answer not flagged as self-marked")
		}
	}
}

func TestOptionShuffleIsStablePerSession(t *testing.T) {
	svc, questions := newSessionService(t, newTestDB(t))
	seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "choice", ShuffleOptions: true})

	first, err := svc.CurrentQuestion(1, session.ID)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := svc.CurrentQuestion(1, session.ID)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if len(first.Question.Options) != len(second.Question.Options) {
		t.Fatal("option counts differ between fetches")
	}
	for i := range first.Question.Options {
		if first.Question.Options[i].ID != second.Question.Options[i].ID {
			t.Fatalf("option order changed between fetches: %v vs %v",
				first.Question.Options, second.Question.Options)
		}
	}
}

func TestShuffledOptionsGradeByDisplayedIndices(t *testing.T) {
	svc, questions := newSessionService(t, newTestDB(t))
	seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "choice", ShuffleOptions: true})

	for i := 0; i < session.TotalQuestions; i++ {
		current, err := svc.CurrentQuestion(1, session.ID)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}

		// Recover the correct option ids from storage, then answer by the
		// displayed positions of those ids.
		row, err := questions.Repo.FindQuestionByID(current.Question.ID)
		if err != nil {
			t.Fatalf("load row: %v", err)
		}
		original, err := RowToQuizQuestion(*row)
		if err != nil {
			t.Fatalf("assemble: %v", err)
		}
		correctIDs := make(map[string]bool)
		for _, idx := range original.CorrectAnswers() {
			opt, ok := original.Option(idx)
			if !ok {
				t.Fatalf("bad correct index %d", idx)
			}
			correctIDs[opt.ID()] = true
		}

		var selected []int
		for pos, opt := range current.Question.Options {
			if correctIDs[opt.ID] {
				selected = append(selected, pos)
			}
		}

		result, err := svc.SubmitAnswer(1, session.ID, selected)
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if !result.Result.Correct {
			t.Fatalf("displayed-index submission %d graded incorrect: %+v", i, result.Result)
		}
	}
}

func TestSessionOwnership(t *testing.T) {
	svc, questions := newSessionService(t, newTestDB(t))
	seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "choice"})

	if _, err := svc.GetSession(2, session.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("foreign user: got %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.GetSession(1, "no-such-session"); !errors.Is(err, util.ErrSessionNotFound) {
		t.Fatalf("missing session: got %v, want ErrSessionNotFound", err)
	}
}

func TestFinishedSessionRefusesPlay(t *testing.T) {
	svc, questions := newSessionService(t, newTestDB(t))
	seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "choice"})
	if _, err := svc.FinishSession(1, session.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}

	if _, err := svc.CurrentQuestion(1, session.ID); !errors.Is(err, util.ErrSessionNotActive) {
		t.Fatalf("got %v, want ErrSessionNotActive", err)
	}
	if _, err := svc.SubmitAnswer(1, session.ID, []int{0}); !errors.Is(err, util.ErrSessionNotActive) {
		t.Fatalf("got %v, want ErrSessionNotActive", err)
	}
}

func TestExpireStaleSessions(t *testing.T) {
	db := newTestDB(t)
	svc, questions := newSessionService(t, db)
	seedPublishedBank(t, questions)

	session := startSession(t, svc, StartSessionRequest{Category: "javascript", Mode: "flip"})

	// Age the session past the TTL.
	if err := db.Model(&model.StudySession{}).
		Where("id = ?", session.ID).
		Update("started_at", session.StartedAt.AddDate(0, 0, -2)).Error; err != nil {
		t.Fatalf("age session: %v", err)
	}

	n, err := svc.ExpireStaleSessions()
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired %d sessions, want 1", n)
	}

	reloaded, err := svc.GetSession(1, session.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != model.SessionAbandoned {
		t.Errorf("status = %q, want abandoned", reloaded.Status)
	}
}
