package memory

import (
	"sync"

	"github.com/incubo-lab/pitchreview/pkg/domain/interfaces"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// projectRecord is the aggregate stored per project. Everything that belongs
// to a project lives here so that cascade delete is a single map deletion.
type projectRecord struct {
	project     *model.Project
	sheet       *model.ScoreSheet
	history     []*model.HistoryEntry
	missingInfo []*model.MissingInfo
}

type store struct {
	mu       sync.RWMutex
	projects map[model.ProjectID]*projectRecord
}

type Memory struct {
	store       *store
	project     *projectRepository
	scoreSheet  *scoreSheetRepository
	missingInfo *missingInfoRepository
	tokens      *tokenStore
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	s := &store{
		projects: make(map[model.ProjectID]*projectRecord),
	}

	return &Memory{
		store:       s,
		project:     &projectRepository{store: s},
		scoreSheet:  &scoreSheetRepository{store: s},
		missingInfo: &missingInfoRepository{store: s},
		tokens:      newTokenStore(),
	}
}

func (m *Memory) Project() interfaces.ProjectRepository {
	return m.project
}

func (m *Memory) ScoreSheet() interfaces.ScoreSheetRepository {
	return m.scoreSheet
}

func (m *Memory) MissingInfo() interfaces.MissingInfoRepository {
	return m.missingInfo
}

func (m *Memory) Close() error {
	return nil
}
