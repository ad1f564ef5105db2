package service

import (
	"context"
	"errors"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uint
	Role   model.UserRole
}

func ActorFromClaims(c *util.Claims) Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{UserID: c.UserID, Role: c.Role}
}

// ResourceRef points at a catalog entity.
type ResourceRef struct {
	Kind repository.ResourceKind
	ID   uint
}

func CourseRef(id uint) ResourceRef     { return ResourceRef{Kind: repository.KindCourse, ID: id} }
func ChapterRef(id uint) ResourceRef    { return ResourceRef{Kind: repository.KindChapter, ID: id} }
func PageRef(id uint) ResourceRef       { return ResourceRef{Kind: repository.KindPage, ID: id} }
func QuestionRef(id uint) ResourceRef   { return ResourceRef{Kind: repository.KindQuestion, ID: id} }
func AttachmentRef(id uint) ResourceRef { return ResourceRef{Kind: repository.KindAttachment, ID: id} }

// Authorize is the role predicate of the identity gate.
func Authorize(actor Actor, required model.UserRole) bool {
	return actor.Role == required
}

// AccessService makes every ownership and enrollment decision.
type AccessService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewAccessService(courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository) *AccessService {
	return &AccessService{CourseRepo: courseRepo, EnrollmentRepo: enrollmentRepo}
}

func (s *AccessService) resolve(ctx context.Context, ref ResourceRef) (*repository.Ownership, error) {
	own, err := s.CourseRepo.FindOwnership(ctx, ref.Kind, ref.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NotFoundf("%s %d", ref.Kind, ref.ID)
	}
	return own, err
}

// CanManage allows an educator to mutate ref only when they created the
// course at the root of its ownership chain.
func (s *AccessService) CanManage(ctx context.Context, actor Actor, ref ResourceRef) (*repository.Ownership, error) {
	if !Authorize(actor, model.Educator) {
		return nil, util.ErrForbidden
	}
	own, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if own.CreatorID != actor.UserID {
		return nil, util.ErrForbidden
	}
	return own, nil
}

// CanLearn allows a student to act on ref when enrolled in its course.
func (s *AccessService) CanLearn(ctx context.Context, actor Actor, ref ResourceRef) (*repository.Ownership, error) {
	if !Authorize(actor, model.Student) {
		return nil, util.ErrForbidden
	}
	own, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.EnrollmentRepo.Exists(ctx, actor.UserID, own.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}
	return own, nil
}
