package service

import (
	"context"
	"encoding/json"
	"errors"
	"interview_card_backend/internal/config"
	"interview_card_backend/internal/model"
	"interview_card_backend/internal/repository"
	"interview_card_backend/internal/util"
	"interview_card_backend/pkg/database"
	"interview_card_backend/pkg/logger"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Study: config.StudyConfig{
			SessionTTLHours: 24,
			CacheTTLMinutes: 10,
		},
	}
}

func newQuestionService(t *testing.T, db *gorm.DB) *QuestionService {
	t.Helper()
	cfg := testConfig(t)
	return NewQuestionService(repository.NewQuestionRepository(db), NewStorageService(cfg), cfg, nil)
}

func sampleImport() BankImport {
	return BankImport{
		Name:     "JavaScript Basics",
		Category: "javascript",
		Questions: []QuestionImport{
			{
				ID:   "js-0001",
				Text: "What does typeof null return?",
				Options: []model.OptionRecord{
					{ID: "a", Text: "\"null\"", Explanation: "typeof never returns \"null\"."},
					{ID: "b", Text: "\"object\"", Explanation: "A long-standing quirk of the language."},
					{ID: "c", Text: "\"undefined\""},
				},
				CorrectAnswers: []int{1},
				Explanation:    "typeof null evaluates to \"object\".",
				Difficulty:     "easy",
				CodeExample: &model.CodeExampleRecord{
					Code:     "console.log(typeof null);",
					Language: "javascript",
					Output:   "object",
				},
			},
			{
				ID:   "js-0002",
				Text: "Which declarations are block scoped?",
				Options: []model.OptionRecord{
					{ID: "a", Text: "var"},
					{ID: "b", Text: "let"},
					{ID: "c", Text: "const"},
				},
				CorrectAnswers: []int{1, 2},
				Explanation:    "let and const are block scoped, var is function scoped.",
				Difficulty:     "easy",
			},
			{
				ID:   "js-0003",
				Text: "What is the result of 0.1 + 0.2 === 0.3?",
				Options: []model.OptionRecord{
					{ID: "a", Text: "true"},
					{ID: "b", Text: "false"},
				},
				CorrectAnswers: []int{1},
				Explanation:    "Binary floating point cannot represent 0.1 or 0.2 exactly.",
				Difficulty:     "medium",
			},
		},
	}
}

func seedPublishedBank(t *testing.T, svc *QuestionService) *model.QuestionBank {
	t.Helper()
	bank, n, err := svc.ImportBank(1, sampleImport())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 3 {
		t.Fatalf("imported %d questions, want 3", n)
	}
	if _, err := svc.SetBankPublished(bank.ID, true); err != nil {
		t.Fatalf("publish: %v", err)
	}
	return bank
}

func TestImportBankStoresValidContent(t *testing.T) {
	svc := newQuestionService(t, newTestDB(t))
	bank := seedPublishedBank(t, svc)

	rows, err := svc.ListQuestionsByBank(bank.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for _, row := range rows {
		if row.Category != "javascript" {
			t.Errorf("row %s category = %q, want javascript", row.QID, row.Category)
		}
		if _, err := RowToQuizQuestion(row); err != nil {
			t.Errorf("row %s does not assemble: %v", row.QID, err)
		}
	}
}

func TestImportBankRejectsWhollyOnOneBadQuestion(t *testing.T) {
	db := newTestDB(t)
	svc := newQuestionService(t, db)

	imp := sampleImport()
	// Correct index 5 is out of bounds for 3 options.
	imp.Questions[1].CorrectAnswers = []int{5}

	if _, _, err := svc.ImportBank(1, imp); err == nil {
		t.Fatal("expected import to fail")
	}

	var banks int64
	db.Model(&model.QuestionBank{}).Count(&banks)
	if banks != 0 {
		t.Errorf("found %d banks after failed import, want 0", banks)
	}
	var questions int64
	db.Model(&model.Question{}).Count(&questions)
	if questions != 0 {
		t.Errorf("found %d questions after failed import, want 0", questions)
	}
}

func TestCreateQuestionRejectsMalformedContent(t *testing.T) {
	svc := newQuestionService(t, newTestDB(t))
	bank := seedPublishedBank(t, svc)

	req := QuestionRequest{
		BankID: bank.ID,
		QID:    "js-0100",
		Text:   "Broken question",
		Options: []model.OptionRecord{
			{ID: "a", Text: "only option"},
		},
		CorrectAnswers: []int{3},
	}
	_, err := svc.CreateQuestion(req)
	if !errors.Is(err, util.ErrMalformedQuestion) {
		t.Fatalf("got %v, want ErrMalformedQuestion", err)
	}
}

func TestCreateQuestionRejectsDuplicateQID(t *testing.T) {
	svc := newQuestionService(t, newTestDB(t))
	bank := seedPublishedBank(t, svc)

	req := QuestionRequest{
		BankID: bank.ID,
		QID:    "js-0001",
		Text:   "Same id again",
		Options: []model.OptionRecord{
			{ID: "a", Text: "x"},
			{ID: "b", Text: "y"},
		},
		CorrectAnswers: []int{0},
	}
	if _, err := svc.CreateQuestion(req); !errors.Is(err, util.ErrDuplicateQuestionID) {
		t.Fatalf("got %v, want ErrDuplicateQuestionID", err)
	}
}

func TestStudentQuestionsHideAnswers(t *testing.T) {
	svc := newQuestionService(t, newTestDB(t))
	seedPublishedBank(t, svc)

	questions, err := svc.StudentQuestions(context.Background(), "javascript")
	if err != nil {
		t.Fatalf("student questions: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}

	for _, q := range questions {
		for _, o := range q.Options {
			if o.Explanation != "" {
				t.Errorf("question %s leaks option explanation", q.QID)
			}
		}
		if q.QID == "js-0001" {
			if q.CodeExample == nil {
				t.Fatal("js-0001 should carry its code example")
			}
			if q.CodeExample.Code == "" || q.CodeExample.Language != "javascript" {
				t.Errorf("unexpected code example: %+v", q.CodeExample)
			}
		}
		if q.QID == "js-0002" && !q.MultipleAnswers {
			t.Error("js-0002 should be flagged as multiple-answer")
		}
	}

	payload, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// The expected snippet output and the grading data must not appear in
	// anything served to students.
	for _, leak := range []string{"correctAnswers", "\"output\"", "quirk"} {
		if strings.Contains(string(payload), leak) {
			t.Errorf("student payload leaks %q", leak)
		}
	}
}

func TestStudentQuestionsRequirePublishedBank(t *testing.T) {
	svc := newQuestionService(t, newTestDB(t))
	bank, _, err := svc.ImportBank(1, sampleImport())
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if _, err := svc.StudentQuestions(context.Background(), "javascript"); !errors.Is(err, util.ErrNoQuestions) {
		t.Fatalf("unpublished bank: got %v, want ErrNoQuestions", err)
	}

	if _, err := svc.SetBankPublished(bank.ID, true); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := svc.StudentQuestions(context.Background(), "javascript"); err != nil {
		t.Fatalf("published bank: %v", err)
	}
}

func TestBuildQuizQuestionsWithholdsMalformedRows(t *testing.T) {
	db := newTestDB(t)
	svc := newQuestionService(t, db)
	seedPublishedBank(t, svc)

	// Corrupt one stored row behind the service's back.
	if err := db.Model(&model.Question{}).
		Where("q_id = ?", "js-0003").
		Update("correct_answers", []byte("[9]")).Error; err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	questions, err := svc.BuildQuizQuestions("javascript")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2 with the corrupted row withheld", len(questions))
	}
	for _, q := range questions {
		if q.ID() == "js-0003" {
			t.Error("corrupted question was served")
		}
	}
}

func TestExportBankRoundTrips(t *testing.T) {
	svc := newQuestionService(t, newTestDB(t))
	bank := seedPublishedBank(t, svc)

	url, err := svc.ExportBank(context.Background(), bank.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(url, "/exports/banks/") {
		t.Fatalf("unexpected export URL %q", url)
	}

	path := filepath.Join(svc.Cfg.Storage.LocalPath, strings.TrimPrefix(url, "/exports/"))
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}

	var exported BankImport
	if err := json.Unmarshal(raw, &exported); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if exported.Category != "javascript" || len(exported.Questions) != 3 {
		t.Fatalf("unexpected export content: category=%q questions=%d", exported.Category, len(exported.Questions))
	}
	if exported.Questions[0].CodeExample == nil || exported.Questions[0].CodeExample.Output != "object" {
		t.Error("export dropped the code example output")
	}
}
