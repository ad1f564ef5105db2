package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/testutil"
	"learnhub_backend/internal/util"
)

type quizFixture struct {
	*testutil.Fixture
	chapterID uint
	capital   *model.QuizQuestion
	answer    *model.QuizQuestion
}

func newQuizFixture(t *testing.T, s *services) *quizFixture {
	t.Helper()
	f := testutil.NewFixture(t, s.db, 1)
	ch := f.Chapters[0].ID
	qf := &quizFixture{
		Fixture:   f,
		chapterID: ch,
		capital:   testutil.AddQuestion(t, s.db, ch, "Capital of France?", "Paris"),
		answer:    testutil.AddQuestion(t, s.db, ch, "Six times seven?", "42"),
	}
	mustEnroll(t, s, f.Student, f.Course.ID)
	return qf
}

func (f *quizFixture) answers(capital, answer string) map[uint]string {
	return map[uint]string{f.capital.ID: capital, f.answer.ID: answer}
}

func TestSubmit_AllCorrectPasses(t *testing.T) {
	s := newServices(t)
	f := newQuizFixture(t, s)

	st, err := s.quiz.Submit(context.Background(), actorOf(f.Student), f.chapterID, f.answers("Paris", "42"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if st.Score != 2 || st.Total != 2 || st.AttemptsUsed != 1 || st.State != QuizPassed {
		t.Fatalf("unexpected status %+v", st)
	}
	if len(st.Answers) != 2 {
		t.Fatalf("passed quiz should reveal answers, got %d", len(st.Answers))
	}
}

func TestSubmit_CaseInsensitivePartialScore(t *testing.T) {
	s := newServices(t)
	f := newQuizFixture(t, s)

	st, err := s.quiz.Submit(context.Background(), actorOf(f.Student), f.chapterID, f.answers("paris", "41"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if st.Score != 1 || st.AttemptsUsed != 1 || st.State != QuizInProgress {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.AttemptsRemaining != 2 {
		t.Fatalf("expected 2 attempts remaining, got %d", st.AttemptsRemaining)
	}
	if len(st.Answers) != 0 {
		t.Fatalf("answers must stay hidden while attempts remain")
	}
}

func TestSubmit_RejectsAfterExhaustion(t *testing.T) {
	s := newServices(t)
	f := newQuizFixture(t, s)
	ctx := context.Background()
	actor := actorOf(f.Student)

	for i := 1; i <= 3; i++ {
		st, err := s.quiz.Submit(ctx, actor, f.chapterID, f.answers("Lyon", "41"))
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if st.AttemptsUsed != i {
			t.Fatalf("attempt %d: attemptsUsed=%d", i, st.AttemptsUsed)
		}
	}

	_, err := s.quiz.Submit(ctx, actor, f.chapterID, f.answers("Paris", "42"))
	var closed *NoAttemptsRemainingError
	if !errors.As(err, &closed) {
		t.Fatalf("expected NoAttemptsRemainingError, got %v", err)
	}
	if closed.Status.State != QuizExhausted || closed.Status.AttemptsUsed != 3 {
		t.Fatalf("unexpected rejection status %+v", closed.Status)
	}
	got := map[string]string{}
	for _, a := range closed.Status.Answers {
		got[a.Question] = a.Answer
	}
	if got["Capital of France?"] != "Paris" || got["Six times seven?"] != "42" {
		t.Fatalf("rejection must reveal answers, got %v", got)
	}

	view, err := s.quiz.GetQuiz(ctx, actor, f.chapterID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if view.AttemptsUsed != 3 || view.Score != 0 {
		t.Fatalf("rejected submission must not change the record: %+v", view.QuizStatus)
	}
}

func TestSubmit_PassedQuizIsClosed(t *testing.T) {
	s := newServices(t)
	f := newQuizFixture(t, s)
	ctx := context.Background()

	if _, err := s.quiz.Submit(ctx, actorOf(f.Student), f.chapterID, f.answers("Paris", "42")); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, err := s.quiz.Submit(ctx, actorOf(f.Student), f.chapterID, f.answers("x", "y"))
	var closed *NoAttemptsRemainingError
	if !errors.As(err, &closed) || closed.Status.State != QuizPassed || closed.Status.Score != 2 {
		t.Fatalf("expected rejection keeping the passing score, got %v", err)
	}
}

func TestSubmit_ConcurrentSubmissionsRespectLimit(t *testing.T) {
	s := newServices(t)
	f := newQuizFixture(t, s)

	const callers = 6
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.quiz.Submit(context.Background(), actorOf(f.Student), f.chapterID, f.answers("no", "no"))
			mu.Lock()
			defer mu.Unlock()
			var closed *NoAttemptsRemainingError
			switch {
			case err == nil:
				accepted++
			case errors.As(err, &closed):
				rejected++
			default:
				t.Errorf("Submit: %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted != 3 || rejected != callers-3 {
		t.Fatalf("expected 3 accepted, got accepted=%d rejected=%d", accepted, rejected)
	}
	var a model.QuizAttempt
	if err := s.db.Where("user_id = ? AND chapter_id = ?", f.Student.ID, f.chapterID).First(&a).Error; err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if a.AttemptsUsed != 3 {
		t.Fatalf("expected attemptsUsed=3, got %d", a.AttemptsUsed)
	}
}

func TestSubmit_AccessRules(t *testing.T) {
	s := newServices(t)
	f := newQuizFixture(t, s)
	ctx := context.Background()

	outsider := testutil.CreateUser(t, s.db, "outsider@example.com", model.Student)
	if _, err := s.quiz.Submit(ctx, actorOf(outsider), f.chapterID, f.answers("Paris", "42")); !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
	if _, err := s.quiz.Submit(ctx, actorOf(f.Educator), f.chapterID, f.answers("Paris", "42")); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for educator, got %v", err)
	}
	if _, err := s.quiz.GetQuiz(ctx, actorOf(f.Student), 9999); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing chapter, got %v", err)
	}
}

func TestGetQuiz_NoQuestions(t *testing.T) {
	s := newServices(t)
	f := testutil.NewFixture(t, s.db, 1)
	mustEnroll(t, s, f.Student, f.Course.ID)

	if _, err := s.quiz.GetQuiz(context.Background(), actorOf(f.Student), f.Chapters[0].ID); !errors.Is(err, util.ErrNoQuiz) {
		t.Fatalf("expected ErrNoQuiz, got %v", err)
	}
}

func TestGetQuiz_HidesAnswersUntilClosed(t *testing.T) {
	s := newServices(t)
	f := newQuizFixture(t, s)

	view, err := s.quiz.GetQuiz(context.Background(), actorOf(f.Student), f.chapterID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if view.State != QuizNoAttempt || view.AttemptsRemaining != 3 {
		t.Fatalf("unexpected fresh state %+v", view.QuizStatus)
	}
	if len(view.Questions) != 2 || len(view.Answers) != 0 {
		t.Fatalf("expected 2 questions and no answers, got %d/%d", len(view.Questions), len(view.Answers))
	}
}

func TestAttemptLimitFollowsPolicy(t *testing.T) {
	s := newServices(t)
	f := newQuizFixture(t, s)
	s.policy.Set(config.LearningConfig{QuizAttemptLimit: 1, UnpassedQuizPenalty: 5})

	if _, err := s.quiz.Submit(context.Background(), actorOf(f.Student), f.chapterID, f.answers("x", "y")); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, err := s.quiz.Submit(context.Background(), actorOf(f.Student), f.chapterID, f.answers("Paris", "42"))
	var closed *NoAttemptsRemainingError
	if !errors.As(err, &closed) {
		t.Fatalf("expected rejection under a limit of 1, got %v", err)
	}
}

func TestQuestionManagementRequiresOwner(t *testing.T) {
	s := newServices(t)
	f := newQuizFixture(t, s)
	ctx := context.Background()
	other := testutil.CreateUser(t, s.db, "other-teacher@example.com", model.Educator)

	if _, err := s.quiz.AddQuestion(ctx, actorOf(other), f.chapterID, "Q", "A"); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := s.quiz.DeleteQuestion(ctx, actorOf(other), f.capital.ID); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := s.quiz.AddQuestion(ctx, actorOf(f.Educator), f.chapterID, " ", "A"); err == nil {
		t.Fatalf("expected validation error for blank question")
	}

	q, err := s.quiz.AddQuestion(ctx, actorOf(f.Educator), f.chapterID, "Largest planet?", "Jupiter")
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	if err := s.quiz.DeleteQuestion(ctx, actorOf(f.Educator), q.ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	list, err := s.quiz.ListQuestionsForEditing(ctx, actorOf(f.Educator), f.chapterID)
	if err != nil {
		t.Fatalf("ListQuestionsForEditing: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 questions after delete, got %d", len(list))
	}
}
