package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"interview_card_backend/internal/config"
	"interview_card_backend/internal/model"
	"interview_card_backend/internal/quiz"
	"interview_card_backend/internal/repository"
	"interview_card_backend/internal/util"
	"interview_card_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const studentQuestionsKeyPrefix = "questions:category:"

// QuestionService owns question banks and their questions. Content is
// admitted through the quiz package's constructors, so every stored row has
// already satisfied the model invariants; anything malformed is refused at
// the door rather than repaired.
type QuestionService struct {
	Repo  *repository.QuestionRepository
	Store *StorageService
	Redis *redis.Client
	Cfg   *config.Config
}

func NewQuestionService(repo *repository.QuestionRepository, store *StorageService, cfg *config.Config, rdb *redis.Client) *QuestionService {
	return &QuestionService{
		Repo:  repo,
		Store: store,
		Redis: rdb,
		Cfg:   cfg,
	}
}

// Request / response shapes

type BankRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
}

type QuestionRequest struct {
	BankID         uint                     `json:"bankId"`
	QID            string                   `json:"qid" binding:"required"`
	Text           string                   `json:"text" binding:"required"`
	Options        []model.OptionRecord     `json:"options" binding:"required"`
	CorrectAnswers []int                    `json:"correctAnswers" binding:"required"`
	Explanation    string                   `json:"explanation"`
	Difficulty     string                   `json:"difficulty"`
	CodeExample    *model.CodeExampleRecord `json:"codeExample,omitempty"`
	Order          int                      `json:"order"`
}

// StudentQuestion is the answer-free view served to learners. Correct
// indices, explanations and expected snippet output stay server-side.
type StudentQuestion struct {
	ID              uint                 `json:"id"`
	QID             string               `json:"qid"`
	Text            string               `json:"text"`
	Options         []model.OptionRecord `json:"options"`
	Category        string               `json:"category"`
	Difficulty      string               `json:"difficulty"`
	MultipleAnswers bool                 `json:"multipleAnswers"`
	CodeExample     *StudentCodeExample  `json:"codeExample,omitempty"`
}

type StudentCodeExample struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Bank methods

func (s *QuestionService) CreateBank(creatorID uint, req BankRequest) (*model.QuestionBank, error) {
	bank := &model.QuestionBank{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		CreatorID:   creatorID,
	}
	if err := s.Repo.CreateBank(bank); err != nil {
		return nil, err
	}
	return bank, nil
}

func (s *QuestionService) ListBanks(page, limit int, publishedOnly bool) ([]model.QuestionBank, int64, error) {
	return s.Repo.ListBanks(page, limit, publishedOnly)
}

func (s *QuestionService) GetBank(id uint) (*model.QuestionBank, error) {
	return s.Repo.FindBankByID(id)
}

func (s *QuestionService) SetBankPublished(id uint, published bool) (*model.QuestionBank, error) {
	bank, err := s.Repo.FindBankByID(id)
	if err != nil {
		return nil, util.ErrBankNotFound
	}
	bank.IsPublished = published
	if published {
		now := time.Now()
		bank.PublishedAt = &now
	} else {
		bank.PublishedAt = nil
	}
	if err := s.Repo.UpdateBank(bank); err != nil {
		return nil, err
	}
	s.invalidateCategory(bank.Category)
	return bank, nil
}

func (s *QuestionService) DeleteBank(id uint) error {
	bank, err := s.Repo.FindBankByID(id)
	if err != nil {
		return util.ErrBankNotFound
	}
	if err := s.Repo.DeleteBank(id); err != nil {
		return err
	}
	s.invalidateCategory(bank.Category)
	return nil
}

func (s *QuestionService) ListCategories() ([]string, error) {
	return s.Repo.ListCategories()
}

// Question methods

func (s *QuestionService) CreateQuestion(req QuestionRequest) (*model.Question, error) {
	bank, err := s.Repo.FindBankByID(req.BankID)
	if err != nil {
		return nil, util.ErrBankNotFound
	}

	if _, err := s.Repo.FindQuestionByQID(req.QID); err == nil {
		return nil, util.ErrDuplicateQuestionID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Run the content through the quiz constructors before persisting;
	// integrity failures come back verbatim so the author can fix the data.
	if _, err := buildQuizQuestion(req.QID, req.Text, req.Options, req.CorrectAnswers, req.Explanation, bank.Category, req.Difficulty, req.CodeExample); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedQuestion, err)
	}

	row, err := questionRow(bank, req)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateQuestion(row); err != nil {
		return nil, err
	}
	s.invalidateCategory(bank.Category)
	return row, nil
}

func (s *QuestionService) UpdateQuestion(id uint, req QuestionRequest) (*model.Question, error) {
	existing, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if req.BankID == 0 {
		req.BankID = existing.BankID
	}
	bank, err := s.Repo.FindBankByID(req.BankID)
	if err != nil {
		return nil, util.ErrBankNotFound
	}

	if _, err := buildQuizQuestion(req.QID, req.Text, req.Options, req.CorrectAnswers, req.Explanation, bank.Category, req.Difficulty, req.CodeExample); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedQuestion, err)
	}

	row, err := questionRow(bank, req)
	if err != nil {
		return nil, err
	}
	row.ID = existing.ID
	row.CreatedAt = existing.CreatedAt
	if err := s.Repo.UpdateQuestion(row); err != nil {
		return nil, err
	}
	s.invalidateCategory(bank.Category)
	return row, nil
}

func (s *QuestionService) DeleteQuestion(id uint) error {
	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return util.ErrQuestionNotFound
	}
	if err := s.Repo.DeleteQuestion(id); err != nil {
		return err
	}
	s.invalidateCategory(q.Category)
	return nil
}

func (s *QuestionService) GetQuestion(id uint) (*model.Question, error) {
	return s.Repo.FindQuestionByID(id)
}

func (s *QuestionService) ListQuestionsByBank(bankID uint) ([]model.Question, error) {
	return s.Repo.ListQuestionsByBank(bankID)
}

// StudentQuestions returns the answer-free view of a published category,
// cached in Redis between content changes.
func (s *QuestionService) StudentQuestions(ctx context.Context, category string) ([]StudentQuestion, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, studentQuestionsKeyPrefix+category).Result()
		if err == nil {
			var out []StudentQuestion
			if json.Unmarshal([]byte(cached), &out) == nil {
				return out, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("question cache read failed", zap.Error(err))
		}
	}

	questions, err := s.BuildQuizQuestions(category)
	if err != nil {
		return nil, err
	}

	rows, err := s.Repo.ListQuestionsByCategory(category)
	if err != nil {
		return nil, err
	}
	rowByQID := make(map[string]uint, len(rows))
	for _, row := range rows {
		rowByQID[row.QID] = row.ID
	}

	out := make([]StudentQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, studentView(rowByQID[q.ID()], q))
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(out); err == nil {
			ttl := time.Duration(s.Cfg.Study.CacheTTLMinutes) * time.Minute
			if err := s.Redis.Set(ctx, studentQuestionsKeyPrefix+category, payload, ttl).Err(); err != nil {
				logger.Log.Warn("question cache write failed", zap.Error(err))
			}
		}
	}

	return out, nil
}

// BuildQuizQuestions assembles the category's stored rows into immutable
// quiz questions. A row that no longer satisfies the model invariants is
// logged and withheld from learners rather than repaired.
func (s *QuestionService) BuildQuizQuestions(category string) ([]quiz.Question, error) {
	rows, err := s.Repo.ListQuestionsByCategory(category)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, util.ErrNoQuestions
	}

	out := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		q, err := RowToQuizQuestion(row)
		if err != nil {
			logger.Log.Error("malformed question withheld",
				zap.String("qid", row.QID),
				zap.Uint("id", row.ID),
				zap.Error(err))
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: all %d questions in category %q are malformed", util.ErrMalformedQuestion, len(rows), category)
	}
	return out, nil
}

// Import / export

// BankImport matches the JSON shape of the source question files.
type BankImport struct {
	Name        string           `json:"name"`
	Category    string           `json:"category" binding:"required"`
	Description string           `json:"description"`
	Questions   []QuestionImport `json:"questions" binding:"required"`
}

type QuestionImport struct {
	ID             string                   `json:"id"`
	Text           string                   `json:"text"`
	Options        []model.OptionRecord     `json:"options"`
	CorrectAnswers []int                    `json:"correctAnswers"`
	Explanation    string                   `json:"explanation"`
	Difficulty     string                   `json:"difficulty"`
	CodeExample    *model.CodeExampleRecord `json:"codeExample,omitempty"`
}

// ImportBank validates and stores a whole bank in one shot. One bad
// question rejects the import; partial banks would silently drop content.
func (s *QuestionService) ImportBank(creatorID uint, imp BankImport) (*model.QuestionBank, int, error) {
	if len(imp.Questions) == 0 {
		return nil, 0, errors.New("import contains no questions")
	}

	name := imp.Name
	if name == "" {
		name = imp.Category
	}
	bank := &model.QuestionBank{
		Name:        name,
		Category:    imp.Category,
		Description: imp.Description,
		CreatorID:   creatorID,
	}

	rows := make([]model.Question, 0, len(imp.Questions))
	for i, qi := range imp.Questions {
		if _, err := buildQuizQuestion(qi.ID, qi.Text, qi.Options, qi.CorrectAnswers, qi.Explanation, imp.Category, qi.Difficulty, qi.CodeExample); err != nil {
			return nil, 0, fmt.Errorf("question %d (%s): %w", i, qi.ID, err)
		}
		row, err := questionRow(bank, QuestionRequest{
			QID:            qi.ID,
			Text:           qi.Text,
			Options:        qi.Options,
			CorrectAnswers: qi.CorrectAnswers,
			Explanation:    qi.Explanation,
			Difficulty:     qi.Difficulty,
			CodeExample:    qi.CodeExample,
			Order:          i,
		})
		if err != nil {
			return nil, 0, err
		}
		rows = append(rows, *row)
	}

	if err := s.Repo.CreateBank(bank); err != nil {
		return nil, 0, err
	}
	for i := range rows {
		rows[i].BankID = bank.ID
	}
	if err := s.Repo.CreateQuestions(rows); err != nil {
		return nil, 0, err
	}
	s.invalidateCategory(imp.Category)
	return bank, len(rows), nil
}

// ExportBank writes the bank back out in the import JSON shape through the
// storage provider and returns the download URL.
func (s *QuestionService) ExportBank(ctx context.Context, bankID uint) (string, error) {
	bank, err := s.Repo.FindBankByID(bankID)
	if err != nil {
		return "", util.ErrBankNotFound
	}
	rows, err := s.Repo.ListQuestionsByBank(bankID)
	if err != nil {
		return "", err
	}

	exp := BankImport{
		Name:        bank.Name,
		Category:    bank.Category,
		Description: bank.Description,
		Questions:   make([]QuestionImport, 0, len(rows)),
	}
	for _, row := range rows {
		var options []model.OptionRecord
		if err := json.Unmarshal(row.Options, &options); err != nil {
			return "", fmt.Errorf("question %s: %w", row.QID, err)
		}
		var correct []int
		if err := json.Unmarshal(row.CorrectAnswers, &correct); err != nil {
			return "", fmt.Errorf("question %s: %w", row.QID, err)
		}
		var example *model.CodeExampleRecord
		if len(row.CodeExample) > 0 {
			example = &model.CodeExampleRecord{}
			if err := json.Unmarshal(row.CodeExample, example); err != nil {
				return "", fmt.Errorf("question %s: %w", row.QID, err)
			}
		}
		exp.Questions = append(exp.Questions, QuestionImport{
			ID:             row.QID,
			Text:           row.Text,
			Options:        options,
			CorrectAnswers: correct,
			Explanation:    row.Explanation,
			Difficulty:     row.Difficulty,
			CodeExample:    example,
		})
	}

	payload, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("banks/%s-%d.json", bank.Category, time.Now().Unix())
	return s.Store.Upload(ctx, filename, bytes.NewReader(payload), int64(len(payload)), "application/json")
}

// Helpers

func (s *QuestionService) invalidateCategory(category string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), studentQuestionsKeyPrefix+category).Err(); err != nil {
		logger.Log.Warn("question cache invalidation failed", zap.String("category", category), zap.Error(err))
	}
}

// RowToQuizQuestion converts a stored row into an immutable quiz.Question,
// surfacing any integrity violation as an error.
func RowToQuizQuestion(row model.Question) (quiz.Question, error) {
	var optionRecords []model.OptionRecord
	if err := json.Unmarshal(row.Options, &optionRecords); err != nil {
		return quiz.Question{}, fmt.Errorf("options column: %w", err)
	}
	var correct []int
	if err := json.Unmarshal(row.CorrectAnswers, &correct); err != nil {
		return quiz.Question{}, fmt.Errorf("correct answers column: %w", err)
	}
	var example *model.CodeExampleRecord
	if len(row.CodeExample) > 0 {
		example = &model.CodeExampleRecord{}
		if err := json.Unmarshal(row.CodeExample, example); err != nil {
			return quiz.Question{}, fmt.Errorf("code example column: %w", err)
		}
	}
	return buildQuizQuestion(row.QID, row.Text, optionRecords, correct, row.Explanation, row.Category, row.Difficulty, example)
}

func buildQuizQuestion(qid, text string, optionRecords []model.OptionRecord, correct []int, explanation, category, difficulty string, exampleRecord *model.CodeExampleRecord) (quiz.Question, error) {
	options := make([]quiz.Option, 0, len(optionRecords))
	for _, rec := range optionRecords {
		o, err := quiz.NewOption(rec.ID, rec.Text, rec.Explanation)
		if err != nil {
			return quiz.Question{}, err
		}
		options = append(options, o)
	}

	data := quiz.QuestionData{
		ID:             qid,
		Text:           text,
		Options:        options,
		CorrectAnswers: correct,
		Explanation:    explanation,
		Category:       category,
		Difficulty:     difficulty,
	}
	if exampleRecord != nil {
		example, err := quiz.NewCodeExample(exampleRecord.Code, exampleRecord.Language, exampleRecord.Output)
		if err != nil {
			return quiz.Question{}, err
		}
		data.CodeExample = &example
	}
	return quiz.NewQuestion(data)
}

func questionRow(bank *model.QuestionBank, req QuestionRequest) (*model.Question, error) {
	optionsJSON, err := json.Marshal(req.Options)
	if err != nil {
		return nil, err
	}
	correctJSON, err := json.Marshal(req.CorrectAnswers)
	if err != nil {
		return nil, err
	}
	var exampleJSON json.RawMessage
	if req.CodeExample != nil {
		exampleJSON, err = json.Marshal(req.CodeExample)
		if err != nil {
			return nil, err
		}
	}
	return &model.Question{
		BankID:         bank.ID,
		QID:            req.QID,
		Text:           req.Text,
		Options:        optionsJSON,
		CorrectAnswers: correctJSON,
		Explanation:    req.Explanation,
		Category:       bank.Category,
		Difficulty:     req.Difficulty,
		CodeExample:    exampleJSON,
		Order:          req.Order,
	}, nil
}

func studentView(rowID uint, q quiz.Question) StudentQuestion {
	options := q.Options()
	records := make([]model.OptionRecord, len(options))
	for i, o := range options {
		// Per-option explanations reveal the answer; stripped here.
		records[i] = model.OptionRecord{ID: o.ID(), Text: o.Text()}
	}
	view := StudentQuestion{
		ID:              rowID,
		QID:             q.ID(),
		Text:            q.Text(),
		Options:         records,
		Category:        q.Category(),
		Difficulty:      q.Difficulty(),
		MultipleAnswers: q.HasMultipleAnswers(),
	}
	if example, ok := q.CodeExample(); ok {
		// Expected output stays hidden; it often is the answer.
		view.CodeExample = &StudentCodeExample{Code: example.Code(), Language: example.Language()}
	}
	return view
}
