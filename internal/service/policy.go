package service

import (
	"sync"

	"learnhub_backend/internal/config"
)

// LearningPolicy holds the quiz attempt limit and progress penalty. It is
// shared by the quiz and progress services and can be swapped when the
// config file is reloaded.
type LearningPolicy struct {
	mu  sync.RWMutex
	cfg config.LearningConfig
}

func NewLearningPolicy(cfg config.LearningConfig) *LearningPolicy {
	p := &LearningPolicy{}
	p.Set(cfg)
	return p
}

func (p *LearningPolicy) Get() config.LearningConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

func (p *LearningPolicy) Set(cfg config.LearningConfig) {
	if cfg.QuizAttemptLimit <= 0 {
		cfg.QuizAttemptLimit = config.DefaultQuizAttemptLimit
	}
	if cfg.UnpassedQuizPenalty < 0 {
		cfg.UnpassedQuizPenalty = 0
	}
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
}
