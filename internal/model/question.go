package model

import "encoding/json"

// Question is the stored form of a multiple-choice interview question.
// Options, correct answer indices and the optional code example are kept as
// JSON columns in the wire shape of the imported content; rows are admitted
// only after the quiz package has accepted them, so reading one back should
// always yield a valid quiz.Question.
// swagger:model Question
type Question struct {
	BaseModel
	BankID         uint            `gorm:"index;type:bigint unsigned" json:"bankId"`
	QID            string          `gorm:"size:100;uniqueIndex;not null" json:"qid"` // content id, e.g. op-0001
	Text           string          `gorm:"type:text;not null" json:"text"`
	Options        json.RawMessage `gorm:"type:json" json:"options"`        // []OptionRecord
	CorrectAnswers json.RawMessage `gorm:"type:json" json:"correctAnswers"` // []int
	Explanation    string          `gorm:"type:text" json:"explanation"`
	Category       string          `gorm:"size:100;index" json:"category"`
	Difficulty     string          `gorm:"size:20" json:"difficulty"` // easy, medium, hard
	CodeExample    json.RawMessage `gorm:"type:json" json:"codeExample,omitempty"`
	Order          int             `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionRecord is the JSON shape of one stored answer option.
type OptionRecord struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Explanation string `json:"explanation,omitempty"`
}

// CodeExampleRecord is the JSON shape of a stored code snippet.
type CodeExampleRecord struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Output   string `json:"output,omitempty"`
}
