package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// CourseFile is the YAML layout accepted by the course importer:
//
//	name: Geography
//	chapters:
//	  - name: Capitals
//	    description: European capitals
//	    pages:
//	      - title: France
//	        content: Paris is the capital of France.
//	    quiz:
//	      - question: Capital of France?
//	        answer: Paris
type CourseFile struct {
	Name     string        `yaml:"name"`
	Chapters []ChapterFile `yaml:"chapters"`
}

type ChapterFile struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Pages       []PageFile     `yaml:"pages"`
	Quiz        []QuestionFile `yaml:"quiz"`
}

type PageFile struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

type QuestionFile struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

func ParseCourseFile(data []byte) (*CourseFile, error) {
	var f CourseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &util.ValidationError{Fields: []string{"yaml: " + err.Error()}}
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *CourseFile) validate() error {
	var bad []string
	if strings.TrimSpace(f.Name) == "" {
		bad = append(bad, "name")
	}
	for i, ch := range f.Chapters {
		if strings.TrimSpace(ch.Name) == "" {
			bad = append(bad, fmt.Sprintf("chapters[%d]", i))
		}
		for j, p := range ch.Pages {
			if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
				bad = append(bad, fmt.Sprintf("chapters[%d].pages[%d]", i, j))
			}
		}
		for j, q := range ch.Quiz {
			if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
				bad = append(bad, fmt.Sprintf("chapters[%d].quiz[%d]", i, j))
			}
		}
	}
	if len(bad) > 0 {
		return &util.ValidationError{Fields: bad}
	}
	return nil
}

type ImportService struct {
	CourseRepo *repository.CourseRepository
	QuizRepo   *repository.QuizRepository
	DB         *gorm.DB
}

func NewImportService(courseRepo *repository.CourseRepository, quizRepo *repository.QuizRepository, db *gorm.DB) *ImportService {
	return &ImportService{CourseRepo: courseRepo, QuizRepo: quizRepo, DB: db}
}

// ImportCourse creates the whole tree owned by actor in one transaction.
// Nothing is written when any part fails.
func (s *ImportService) ImportCourse(ctx context.Context, actor Actor, f *CourseFile) (*model.Course, error) {
	if !Authorize(actor, model.Educator) {
		return nil, util.ErrForbidden
	}

	course := &model.Course{Name: strings.TrimSpace(f.Name), CreatorID: actor.UserID}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		quizzes := s.QuizRepo.WithTx(tx)

		taken, err := courses.CourseNameExists(ctx, course.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return util.ErrCourseNameTaken
		}
		if err := courses.CreateCourse(ctx, course); err != nil {
			return err
		}

		for _, cf := range f.Chapters {
			ch := &model.Chapter{
				Name:        strings.TrimSpace(cf.Name),
				Description: strings.TrimSpace(cf.Description),
				CourseID:    course.ID,
			}
			if err := courses.CreateChapter(ctx, ch); err != nil {
				return err
			}
			for _, pf := range cf.Pages {
				page := &model.Page{Title: strings.TrimSpace(pf.Title), Content: pf.Content, ChapterID: ch.ID}
				if err := courses.CreatePage(ctx, page); err != nil {
					return err
				}
			}
			for _, qf := range cf.Quiz {
				q := &model.QuizQuestion{
					ChapterID: ch.ID,
					Question:  strings.TrimSpace(qf.Question),
					Answer:    strings.TrimSpace(qf.Answer),
				}
				if err := quizzes.CreateQuestion(ctx, q); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.ErrCourseNameTaken
	}
	if err != nil {
		return nil, err
	}
	return course, nil
}
