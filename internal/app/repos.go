package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/tutorbot-backend/internal/data/repos"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

type Repos struct {
	QAEntry     repos.QAEntryRepo
	StepContent repos.StepContentRepo
	TutorTurn   repos.TutorTurnRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		QAEntry:     repos.NewQAEntryRepo(db, log),
		StepContent: repos.NewStepContentRepo(db, log),
		TutorTurn:   repos.NewTutorTurnRepo(db, log),
	}
}
