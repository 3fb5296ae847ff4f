package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"interview_card_backend/internal/config"
	"interview_card_backend/internal/model"
	"interview_card_backend/internal/quiz"
	"interview_card_backend/internal/repository"
	"interview_card_backend/internal/util"
	"interview_card_backend/pkg/logger"
	"interview_card_backend/pkg/monitoring"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionService runs study sessions: flip cards with self-assessment and
// graded multiple choice. The question order is frozen at start; per-question
// option order is recomputed deterministically from the session and question
// ids, so the arrangement a learner saw is the one their answer is graded
// against without persisting permutations.
type SessionService struct {
	Sessions  *repository.SessionRepository
	Questions *QuestionService
	Progress  *repository.ProgressRepository
	Cfg       *config.Config

	shuffler  *quiz.ShuffleService
	validator *quiz.AnswerValidator
}

func NewSessionService(sessions *repository.SessionRepository, questions *QuestionService, progress *repository.ProgressRepository, cfg *config.Config) *SessionService {
	return &SessionService{
		Sessions:  sessions,
		Questions: questions,
		Progress:  progress,
		Cfg:       cfg,
		shuffler:  quiz.NewShuffleService(),
		validator: quiz.NewAnswerValidator(),
	}
}

type StartSessionRequest struct {
	Category       string `json:"category" binding:"required"`
	Mode           string `json:"mode" binding:"required,oneof=flip choice"`
	ShuffleOptions bool   `json:"shuffleOptions"`
	Limit          int    `json:"limit"`
}

// SessionQuestion is what the learner sees at one position of a session.
type SessionQuestion struct {
	SessionID string          `json:"sessionId"`
	Position  int             `json:"position"`
	Total     int             `json:"total"`
	Question  StudentQuestion `json:"question"`
}

// AnswerReveal is the flip-card back side: full answer and explanations.
type AnswerReveal struct {
	SessionID      string               `json:"sessionId"`
	Position       int                  `json:"position"`
	CorrectAnswers []int                `json:"correctAnswers"`
	Explanation    string               `json:"explanation"`
	Options        []model.OptionRecord `json:"options"`
	CodeOutput     string               `json:"codeOutput,omitempty"`
}

// SubmitResult carries the validation outcome plus, for valid submissions,
// the feedback that was hidden while answering.
type SubmitResult struct {
	Result      quiz.ValidationResult `json:"result"`
	Explanation string                `json:"explanation,omitempty"`
	Options     []model.OptionRecord  `json:"options,omitempty"`
	CodeOutput  string                `json:"codeOutput,omitempty"`
	Position    int                   `json:"position"`
	Completed   bool                  `json:"completed"`
}

type SessionSummary struct {
	Session  *model.StudySession   `json:"session"`
	Answers  []model.SessionAnswer `json:"answers"`
	Accuracy float64               `json:"accuracy"`
}

// StartSession freezes a shuffled question order for the category and
// returns the new active session. Rows that fail assembly are excluded up
// front so the session never dead-ends on malformed content.
func (s *SessionService) StartSession(userID uint, req StartSessionRequest) (*model.StudySession, error) {
	rows, err := s.Questions.Repo.ListQuestionsByCategory(req.Category)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, util.ErrNoQuestions
	}

	questions := make([]quiz.Question, 0, len(rows))
	rowByQID := make(map[string]uint, len(rows))
	for _, row := range rows {
		q, err := RowToQuizQuestion(row)
		if err != nil {
			logger.Log.Error("malformed question excluded from session",
				zap.String("qid", row.QID), zap.Error(err))
			continue
		}
		questions = append(questions, q)
		rowByQID[q.ID()] = row.ID
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: all questions in category %q are malformed", util.ErrMalformedQuestion, req.Category)
	}

	shuffled := s.shuffler.ShuffleQuestions(questions)

	limit := req.Limit
	if limit <= 0 || limit > len(shuffled) {
		limit = len(shuffled)
	}
	order := make([]uint, 0, limit)
	for _, q := range shuffled[:limit] {
		order = append(order, rowByQID[q.ID()])
	}
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	session := &model.StudySession{
		UserID:         userID,
		Category:       req.Category,
		Mode:           model.SessionMode(req.Mode),
		ShuffleOptions: req.ShuffleOptions,
		QuestionOrder:  orderJSON,
		Status:         model.SessionActive,
		TotalQuestions: len(order),
		StartedAt:      time.Now(),
	}
	if err := s.Sessions.Create(session); err != nil {
		return nil, err
	}
	monitoring.SessionCounter.WithLabelValues(string(session.Mode), "started").Inc()
	return session, nil
}

func (s *SessionService) GetSession(userID uint, sessionID string) (*model.StudySession, error) {
	return s.loadOwned(userID, sessionID)
}

func (s *SessionService) ListSessions(userID uint, page, limit int, status string) ([]model.StudySession, int64, error) {
	return s.Sessions.ListByUser(userID, page, limit, status)
}

// CurrentQuestion serves the answer-free view of the question at the
// session's cursor, with options in the arrangement this session grades
// against.
func (s *SessionService) CurrentQuestion(userID uint, sessionID string) (*SessionQuestion, error) {
	session, err := s.activeOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	row, q, err := s.questionAtCursor(session)
	if err != nil {
		return nil, err
	}
	return &SessionQuestion{
		SessionID: session.ID,
		Position:  session.CurrentIndex,
		Total:     session.TotalQuestions,
		Question:  studentView(row.ID, q),
	}, nil
}

// SubmitAnswer grades a choice-mode submission. Invalid input returns the
// accumulated validation messages and leaves the cursor where it is; only a
// well-formed submission is recorded and advances the session.
func (s *SessionService) SubmitAnswer(userID uint, sessionID string, selected []int) (*SubmitResult, error) {
	session, err := s.activeOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Mode != model.ModeChoice {
		return nil, util.ErrWrongSessionMode
	}
	row, q, err := s.questionAtCursor(session)
	if err != nil {
		return nil, err
	}

	result := s.validator.Validate(q, selected)
	if !result.Valid {
		return &SubmitResult{Result: result, Position: session.CurrentIndex}, nil
	}

	selectedJSON, err := json.Marshal(result.SelectedAnswers)
	if err != nil {
		return nil, err
	}
	answer := &model.SessionAnswer{
		SessionID:       session.ID,
		QuestionID:      row.ID,
		Position:        session.CurrentIndex,
		SelectedAnswers: selectedJSON,
		IsCorrect:       result.Correct,
	}
	if err := s.Sessions.CreateAnswer(answer); err != nil {
		return nil, err
	}

	if err := s.advance(session, result.Correct); err != nil {
		return nil, err
	}
	if result.Correct {
		monitoring.AnswerCounter.WithLabelValues("correct").Inc()
	} else {
		monitoring.AnswerCounter.WithLabelValues("incorrect").Inc()
	}
	if err := s.Progress.RecordAnswer(userID, session.Category, result.Correct); err != nil {
		logger.Log.Warn("progress update failed", zap.Error(err))
	}

	out := &SubmitResult{
		Result:      result,
		Explanation: q.Explanation(),
		Options:     feedbackOptions(q),
		Position:    answer.Position,
		Completed:   session.Status == model.SessionCompleted,
	}
	if example, ok := q.CodeExample(); ok && example.HasOutput() {
		out.CodeOutput = example.Output()
	}
	return out, nil
}

// RevealAnswer turns the current flip card over without advancing; the
// learner marks themselves with SelfMark afterwards.
func (s *SessionService) RevealAnswer(userID uint, sessionID string) (*AnswerReveal, error) {
	session, err := s.activeOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Mode != model.ModeFlip {
		return nil, util.ErrWrongSessionMode
	}
	_, q, err := s.questionAtCursor(session)
	if err != nil {
		return nil, err
	}

	reveal := &AnswerReveal{
		SessionID:      session.ID,
		Position:       session.CurrentIndex,
		CorrectAnswers: q.CorrectAnswers(),
		Explanation:    q.Explanation(),
		Options:        feedbackOptions(q),
	}
	if example, ok := q.CodeExample(); ok && example.HasOutput() {
		reveal.CodeOutput = example.Output()
	}
	return reveal, nil
}

// SelfMark records the learner's own verdict on the current flip card and
// advances the session.
func (s *SessionService) SelfMark(userID uint, sessionID string, knewIt bool) (*model.StudySession, error) {
	session, err := s.activeOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Mode != model.ModeFlip {
		return nil, util.ErrWrongSessionMode
	}
	row, _, err := s.questionAtCursor(session)
	if err != nil {
		return nil, err
	}

	answer := &model.SessionAnswer{
		SessionID:  session.ID,
		QuestionID: row.ID,
		Position:   session.CurrentIndex,
		IsCorrect:  knewIt,
		SelfMarked: true,
	}
	if err := s.Sessions.CreateAnswer(answer); err != nil {
		return nil, err
	}
	if err := s.advance(session, knewIt); err != nil {
		return nil, err
	}
	if err := s.Progress.RecordAnswer(userID, session.Category, knewIt); err != nil {
		logger.Log.Warn("progress update failed", zap.Error(err))
	}
	return session, nil
}

// FinishSession closes the session early (or confirms a completed one) and
// returns the summary.
func (s *SessionService) FinishSession(userID uint, sessionID string) (*SessionSummary, error) {
	session, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionActive {
		now := time.Now()
		session.Status = model.SessionCompleted
		session.CompletedAt = &now
		if err := s.Sessions.Update(session); err != nil {
			return nil, err
		}
	}

	answers, err := s.Sessions.ListAnswers(session.ID)
	if err != nil {
		return nil, err
	}
	summary := &SessionSummary{Session: session, Answers: answers}
	if session.AnsweredCount > 0 {
		summary.Accuracy = float64(session.CorrectCount) / float64(session.AnsweredCount)
	}
	return summary, nil
}

// ExpireStaleSessions abandons active sessions older than the configured
// TTL. Called periodically from the app's background loop.
func (s *SessionService) ExpireStaleSessions() (int64, error) {
	cutoff := time.Now().Add(-time.Duration(s.Cfg.Study.SessionTTLHours) * time.Hour)
	return s.Sessions.AbandonStale(cutoff)
}

func (s *SessionService) loadOwned(userID uint, sessionID string) (*model.StudySession, error) {
	session, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

func (s *SessionService) activeOwned(userID uint, sessionID string) (*model.StudySession, error) {
	session, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, util.ErrSessionNotActive
	}
	return session, nil
}

// questionAtCursor loads and assembles the question at the session's current
// index, applying this session's deterministic option shuffle.
func (s *SessionService) questionAtCursor(session *model.StudySession) (*model.Question, quiz.Question, error) {
	var order []uint
	if err := json.Unmarshal(session.QuestionOrder, &order); err != nil {
		return nil, quiz.Question{}, err
	}
	if session.CurrentIndex >= len(order) {
		return nil, quiz.Question{}, util.ErrSessionExhausted
	}

	row, err := s.Questions.Repo.FindQuestionByID(order[session.CurrentIndex])
	if err != nil {
		return nil, quiz.Question{}, util.ErrQuestionNotFound
	}
	q, err := RowToQuizQuestion(*row)
	if err != nil {
		return nil, quiz.Question{}, fmt.Errorf("%w: %v", util.ErrMalformedQuestion, err)
	}

	if session.ShuffleOptions {
		q, err = s.shuffleForSession(session.ID, q)
		if err != nil {
			return nil, quiz.Question{}, err
		}
	}
	return row, q, nil
}

// shuffleForSession permutes a question's options with randomness seeded
// from the session and question ids. The same pair always yields the same
// arrangement, so delivery and grading agree across requests.
func (s *SessionService) shuffleForSession(sessionID string, q quiz.Question) (quiz.Question, error) {
	h := fnv.New64a()
	h.Write([]byte(sessionID))
	h.Write([]byte(q.ID()))
	seeded := quiz.NewShuffleServiceWithSource(rand.NewSource(int64(h.Sum64())))
	return seeded.ShuffleQuestionOptions(q)
}

func (s *SessionService) advance(session *model.StudySession, correct bool) error {
	session.AnsweredCount++
	if correct {
		session.CorrectCount++
	}
	session.CurrentIndex++
	if session.CurrentIndex >= session.TotalQuestions {
		now := time.Now()
		session.Status = model.SessionCompleted
		session.CompletedAt = &now
		monitoring.SessionCounter.WithLabelValues(string(session.Mode), "completed").Inc()
	}
	return s.Sessions.Update(session)
}

// feedbackOptions exposes per-option explanations, shown only after the
// question is answered or revealed.
func feedbackOptions(q quiz.Question) []model.OptionRecord {
	options := q.Options()
	records := make([]model.OptionRecord, len(options))
	for i, o := range options {
		records[i] = model.OptionRecord{ID: o.ID(), Text: o.Text(), Explanation: o.Explanation()}
	}
	return records
}
