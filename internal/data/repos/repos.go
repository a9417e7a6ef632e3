package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/tutorbot-backend/internal/data/repos/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
)

type QAEntryRepo = tutorial.QAEntryRepo
type StepContentRepo = tutorial.StepContentRepo
type TutorTurnRepo = tutorial.TutorTurnRepo

func NewQAEntryRepo(db *gorm.DB, baseLog *logger.Logger) QAEntryRepo {
	return tutorial.NewQAEntryRepo(db, baseLog)
}
func NewStepContentRepo(db *gorm.DB, baseLog *logger.Logger) StepContentRepo {
	return tutorial.NewStepContentRepo(db, baseLog)
}
func NewTutorTurnRepo(db *gorm.DB, baseLog *logger.Logger) TutorTurnRepo {
	return tutorial.NewTutorTurnRepo(db, baseLog)
}
