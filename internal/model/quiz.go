package model

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	ChapterID uint   `gorm:"index;not null" json:"chapterId"`
	Question  string `gorm:"size:1000;not null" json:"question"`
	Answer    string `gorm:"size:500;not null" json:"-"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizAttempt is the per-student, per-chapter grading record. AttemptsUsed
// counts graded submissions upward from zero.
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	UserID       uint `gorm:"uniqueIndex:idx_quiz_attempt_user_chapter;not null" json:"userId"`
	ChapterID    uint `gorm:"uniqueIndex:idx_quiz_attempt_user_chapter;index;not null" json:"chapterId"`
	Score        int  `gorm:"not null;default:0" json:"score"`
	Total        int  `gorm:"not null;default:0" json:"total"`
	AttemptsUsed int  `gorm:"not null;default:0" json:"attemptsUsed"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// Passed reports a full score on a graded, non-empty quiz.
func (a *QuizAttempt) Passed() bool {
	return a != nil && a.Total > 0 && a.Score == a.Total
}
