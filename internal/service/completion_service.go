package service

import (
	"context"

	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/monitoring"
)

type CompletionService struct {
	CompletionRepo *repository.CompletionRepository
	Access         *AccessService
}

func NewCompletionService(completionRepo *repository.CompletionRepository, access *AccessService) *CompletionService {
	return &CompletionService{CompletionRepo: completionRepo, Access: access}
}

type CompletionResult struct {
	PageID   uint `json:"pageId"`
	CourseID uint `json:"courseId"`
	Created  bool `json:"created"`
}

// MarkComplete records that an enrolled student read the page. Repeating the
// call is a no-op reported as created=false.
func (s *CompletionService) MarkComplete(ctx context.Context, actor Actor, pageID uint) (*CompletionResult, error) {
	own, err := s.Access.CanLearn(ctx, actor, PageRef(pageID))
	if err != nil {
		return nil, err
	}
	created, err := s.CompletionRepo.InsertIfAbsent(ctx, actor.UserID, pageID)
	if err != nil {
		return nil, err
	}
	monitoring.CompletionCounter.WithLabelValues(monitoring.Outcome(created)).Inc()
	return &CompletionResult{PageID: pageID, CourseID: own.CourseID, Created: created}, nil
}
