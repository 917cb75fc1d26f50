package usecase

import (
	"sync"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"golang.org/x/sync/semaphore"
)

// projectState is the in-process coordination state of one project.
// Lock order is editMu, then mu.
type projectState struct {
	// editMu guards session
	editMu  sync.Mutex
	session *editSession

	// mu serializes writes to the project record
	mu sync.Mutex

	// commit admits at most one score commit at a time
	commit *semaphore.Weighted

	// missingMu serializes missing-info add and remove
	missingMu sync.Mutex

	// refs counts in-flight operations; guarded by projectStates.mu
	refs int
}

// editSession is the edit session of one actor on a project's score sheet
type editSession struct {
	actor     string
	draft     *model.ScoreDraft
	startedAt time.Time
	// touchedAt is the last time the owner used the session
	touchedAt time.Time
}

type projectStates struct {
	mu     sync.Mutex
	states map[model.ProjectID]*projectState
}

func newProjectStates() *projectStates {
	return &projectStates{
		states: make(map[model.ProjectID]*projectState),
	}
}

// acquire returns the state of id and pins it until release is called.
// States exist only while pinned or while an edit session is open.
func (s *projectStates) acquire(id model.ProjectID) *projectState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[id]
	if !ok {
		st = &projectState{commit: semaphore.NewWeighted(1)}
		s.states[id] = st
	}
	st.refs++
	return st
}

// release unpins st. Session writers always hold a pin, so session is stable
// once refs drops to zero.
func (s *projectStates) release(id model.ProjectID, st *projectState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.refs--
	if st.refs == 0 && st.session == nil && s.states[id] == st {
		delete(s.states, id)
	}
}

// ids returns the projects that currently have state
func (s *projectStates) ids() []model.ProjectID {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ProjectID, 0, len(s.states))
	for id := range s.states {
		out = append(out, id)
	}
	return out
}

// count returns the number of tracked projects
func (s *projectStates) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
