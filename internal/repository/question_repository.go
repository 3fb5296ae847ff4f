package repository

import (
	"interview_card_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// Bank methods

func (r *QuestionRepository) CreateBank(bank *model.QuestionBank) error {
	return r.DB.Create(bank).Error
}

func (r *QuestionRepository) FindBankByID(id uint) (*model.QuestionBank, error) {
	var bank model.QuestionBank
	err := r.DB.First(&bank, id).Error
	return &bank, err
}

func (r *QuestionRepository) FindBankByCategory(category string) (*model.QuestionBank, error) {
	var bank model.QuestionBank
	err := r.DB.Where("category = ?", category).First(&bank).Error
	return &bank, err
}

func (r *QuestionRepository) ListBanks(page, limit int, publishedOnly bool) ([]model.QuestionBank, int64, error) {
	var banks []model.QuestionBank
	var total int64
	query := r.DB.Model(&model.QuestionBank{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("category asc, created_at desc").Offset(offset).Limit(limit).Find(&banks).Error
	return banks, total, err
}

func (r *QuestionRepository) UpdateBank(bank *model.QuestionBank) error {
	return r.DB.Save(bank).Error
}

func (r *QuestionRepository) DeleteBank(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bank_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.QuestionBank{}, id).Error
	})
}

// ListCategories returns the distinct categories of published banks.
func (r *QuestionRepository) ListCategories() ([]string, error) {
	var categories []string
	err := r.DB.Model(&model.QuestionBank{}).
		Where("is_published = ?", true).
		Distinct().
		Order("category asc").
		Pluck("category", &categories).Error
	return categories, err
}

// Question methods

func (r *QuestionRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) CreateQuestions(qs []model.Question) error {
	if len(qs) == 0 {
		return nil
	}
	return r.DB.Create(&qs).Error
}

func (r *QuestionRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) FindQuestionByQID(qid string) (*model.Question, error) {
	var q model.Question
	err := r.DB.Where("q_id = ?", qid).First(&q).Error
	return &q, err
}

func (r *QuestionRepository) FindQuestionsByIDs(ids []uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) ListQuestionsByBank(bankID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("bank_id = ?", bankID).
		Order("`order` asc, created_at asc").
		Find(&qs).Error
	return qs, err
}

// ListQuestionsByCategory returns questions from published banks only.
func (r *QuestionRepository) ListQuestionsByCategory(category string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.
		Joins("JOIN question_banks ON question_banks.id = questions.bank_id").
		Where("question_banks.is_published = ? AND question_banks.deleted_at IS NULL", true).
		Where("questions.category = ?", category).
		Order("questions.`order` asc, questions.created_at asc").
		Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) UpdateQuestion(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *QuestionRepository) CountByBank(bankID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("bank_id = ?", bankID).Count(&count).Error
	return count, err
}
