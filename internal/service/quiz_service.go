package service

import (
	"context"
	"errors"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type QuizState string

const (
	QuizNoAttempt  QuizState = "no_attempt"
	QuizInProgress QuizState = "in_progress"
	QuizExhausted  QuizState = "exhausted"
	QuizPassed     QuizState = "passed"
)

// Closed states accept no further submissions and reveal the answers.
func (s QuizState) Closed() bool {
	return s == QuizExhausted || s == QuizPassed
}

// quizState derives the state of an attempt record under the given limit.
func quizState(a *model.QuizAttempt, limit int) QuizState {
	switch {
	case a == nil || a.AttemptsUsed == 0:
		return QuizNoAttempt
	case a.Passed():
		return QuizPassed
	case a.AttemptsUsed >= limit:
		return QuizExhausted
	default:
		return QuizInProgress
	}
}

type QuestionView struct {
	ID       uint   `json:"id"`
	Question string `json:"question"`
}

type RevealedAnswer struct {
	QuestionID uint   `json:"questionId"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// QuizStatus is the student's standing on a chapter quiz. Answers is only
// populated once the quiz is closed.
type QuizStatus struct {
	ChapterID         uint             `json:"chapterId"`
	State             QuizState        `json:"state"`
	Score             int              `json:"score"`
	Total             int              `json:"total"`
	AttemptsUsed      int              `json:"attemptsUsed"`
	AttemptsRemaining int              `json:"attemptsRemaining"`
	Answers           []RevealedAnswer `json:"answers,omitempty"`
}

type QuizView struct {
	QuizStatus
	Questions []QuestionView `json:"questions"`
}

// NoAttemptsRemainingError rejects a submission to a closed quiz. Status
// carries the revealed answers.
type NoAttemptsRemainingError struct {
	Status *QuizStatus
}

func (e *NoAttemptsRemainingError) Error() string {
	return "no attempts remaining"
}

type QuizService struct {
	QuizRepo *repository.QuizRepository
	Access   *AccessService
	Policy   *LearningPolicy
	DB       *gorm.DB
}

func NewQuizService(quizRepo *repository.QuizRepository, access *AccessService, policy *LearningPolicy, db *gorm.DB) *QuizService {
	return &QuizService{
		QuizRepo: quizRepo,
		Access:   access,
		Policy:   policy,
		DB:       db,
	}
}

func (s *QuizService) AddQuestion(ctx context.Context, actor Actor, chapterID uint, question, answer string) (*model.QuizQuestion, error) {
	if err := util.Require(map[string]string{"question": question, "answer": answer}); err != nil {
		return nil, err
	}
	if _, err := s.Access.CanManage(ctx, actor, ChapterRef(chapterID)); err != nil {
		return nil, err
	}
	q := &model.QuizQuestion{
		ChapterID: chapterID,
		Question:  strings.TrimSpace(question),
		Answer:    strings.TrimSpace(answer),
	}
	if err := s.QuizRepo.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, actor Actor, questionID uint) error {
	if _, err := s.Access.CanManage(ctx, actor, QuestionRef(questionID)); err != nil {
		return err
	}
	return s.QuizRepo.DeleteQuestion(ctx, questionID)
}

// ListQuestionsForEditing returns the questions with their expected answers
// to the chapter's owner.
func (s *QuizService) ListQuestionsForEditing(ctx context.Context, actor Actor, chapterID uint) ([]RevealedAnswer, error) {
	if _, err := s.Access.CanManage(ctx, actor, ChapterRef(chapterID)); err != nil {
		return nil, err
	}
	questions, err := s.QuizRepo.ListQuestions(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	return reveal(questions), nil
}

func (s *QuizService) status(chapterID uint, attempt *model.QuizAttempt, questions []model.QuizQuestion, limit int) *QuizStatus {
	st := &QuizStatus{
		ChapterID: chapterID,
		State:     quizState(attempt, limit),
		Total:     len(questions),
	}
	if attempt != nil && attempt.AttemptsUsed > 0 {
		st.Score = attempt.Score
		st.Total = attempt.Total
		st.AttemptsUsed = attempt.AttemptsUsed
	}
	if st.State != QuizPassed && st.AttemptsUsed < limit {
		st.AttemptsRemaining = limit - st.AttemptsUsed
	}
	if st.State.Closed() {
		st.Answers = reveal(questions)
	}
	return st
}

func reveal(questions []model.QuizQuestion) []RevealedAnswer {
	out := make([]RevealedAnswer, 0, len(questions))
	for _, q := range questions {
		out = append(out, RevealedAnswer{QuestionID: q.ID, Question: q.Question, Answer: q.Answer})
	}
	return out
}

// answerMatches compares case-insensitively after trimming surrounding space.
func answerMatches(given, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(expected))
}

// grade counts the questions whose submitted answer matches. Unanswered
// questions count as wrong.
func grade(questions []model.QuizQuestion, answers map[uint]string) int {
	score := 0
	for _, q := range questions {
		if given, ok := answers[q.ID]; ok && answerMatches(given, q.Answer) {
			score++
		}
	}
	return score
}

// GetQuiz shows an enrolled student the chapter quiz and their standing.
func (s *QuizService) GetQuiz(ctx context.Context, actor Actor, chapterID uint) (*QuizView, error) {
	if _, err := s.Access.CanLearn(ctx, actor, ChapterRef(chapterID)); err != nil {
		return nil, err
	}
	questions, err := s.QuizRepo.ListQuestions(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuiz
	}

	attempt, err := s.QuizRepo.FindAttempt(ctx, actor.UserID, chapterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		attempt, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	view := &QuizView{QuizStatus: *s.status(chapterID, attempt, questions, s.Policy.Get().QuizAttemptLimit)}
	view.Questions = make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		view.Questions = append(view.Questions, QuestionView{ID: q.ID, Question: q.Question})
	}
	return view, nil
}

// Submit grades one submission. The attempt row is locked for the whole
// read-modify-write, so concurrent submissions for the same (user, chapter)
// cannot both pass the attempts check. A closed quiz returns
// *NoAttemptsRemainingError and leaves the record untouched.
func (s *QuizService) Submit(ctx context.Context, actor Actor, chapterID uint, answers map[uint]string) (*QuizStatus, error) {
	if _, err := s.Access.CanLearn(ctx, actor, ChapterRef(chapterID)); err != nil {
		return nil, err
	}
	limit := s.Policy.Get().QuizAttemptLimit

	var result *QuizStatus
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.QuizRepo.WithTx(tx)

		questions, err := repo.ListQuestions(ctx, chapterID)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return util.ErrNoQuiz
		}

		attempt, _, err := repo.LockAttempt(ctx, actor.UserID, chapterID)
		if err != nil {
			return err
		}
		if current := s.status(chapterID, attempt, questions, limit); current.State.Closed() {
			return &NoAttemptsRemainingError{Status: current}
		}

		attempt.Score = grade(questions, answers)
		attempt.Total = len(questions)
		attempt.AttemptsUsed++
		if err := repo.SaveGrade(ctx, attempt); err != nil {
			return err
		}
		result = s.status(chapterID, attempt, questions, limit)
		return nil
	})
	if err != nil {
		var closed *NoAttemptsRemainingError
		if errors.As(err, &closed) {
			monitoring.QuizSubmissionCounter.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	monitoring.QuizSubmissionCounter.WithLabelValues(string(result.State)).Inc()
	return result, nil
}
