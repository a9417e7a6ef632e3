package app

import (
	"fmt"

	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/observability"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
	"github.com/yungbote/tutorbot-backend/internal/services"
)

type Services struct {
	Content   services.ContentStore
	Responses services.ResponseStore
	Tutor     services.TutorService
	History   services.TurnHistory
}

func wireServices(log *logger.Logger, cfg Config, tcfg tutorial.Config, clients Clients, reposet Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	folder := contentFolder(cfg, tcfg)
	content := services.NewIndexedContentStore(log, reposet.StepContent, clients.Bucket, folder, metrics)
	namespace := services.ContentCacheNamespace(tcfg.Name, clients.Bucket.Name(), folder)
	content = services.NewCachedContentStore(log, clients.TextCache, content, namespace, cfg.ContentCacheTTL, metrics)

	responses := services.NewResponseStore(log, reposet.QAEntry)

	tutor, err := services.NewTutorService(log, services.TutorServiceDeps{
		Config:    tcfg,
		Content:   content,
		Responses: responses,
		Turns:     reposet.TutorTurn,
		Metrics:   metrics,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init tutor service: %w", err)
	}

	history := services.NewTurnHistory(log, reposet.TutorTurn)

	return Services{Content: content, Responses: responses, Tutor: tutor, History: history}, nil
}

func contentFolder(cfg Config, tcfg tutorial.Config) string {
	if cfg.ContentFolder != "" {
		return cfg.ContentFolder
	}
	return tcfg.ContentFolder
}
