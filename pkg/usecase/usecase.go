package usecase

import (
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
)

// recentProjectCount is the number of projects shown on the dashboard
const recentProjectCount = 5

type UseCases struct {
	repo     interfaces.Repository
	sessions interfaces.SessionRepository
	states   *projectStates
	now      func() time.Time

	Project     *ProjectUseCase
	Score       *ScoreUseCase
	MissingInfo *MissingInfoUseCase
	Auth        AuthUseCaseInterface
}

type Option func(*UseCases)

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithSessionRepository stores sessions outside the main repository, e.g. in redis
func WithSessionRepository(sessions interfaces.SessionRepository) Option {
	return func(uc *UseCases) {
		uc.sessions = sessions
	}
}

// WithClock replaces time.Now. Used by tests and the seed command.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		sessions: repo,
		states:   newProjectStates(),
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Project = &ProjectUseCase{repo: repo, states: uc.states, now: uc.now}
	uc.Score = &ScoreUseCase{repo: repo, states: uc.states, now: uc.now}
	uc.MissingInfo = &MissingInfoUseCase{repo: repo, states: uc.states, now: uc.now}
	if uc.Auth == nil {
		uc.Auth = NewNoAuthnUseCase()
	}

	return uc
}

// Sessions returns the session store selected for this instance
func (uc *UseCases) Sessions() interfaces.SessionRepository {
	return uc.sessions
}
