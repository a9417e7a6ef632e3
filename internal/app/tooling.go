package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/tutorbot-backend/internal/modules/tutorial"
	"github.com/yungbote/tutorbot-backend/internal/platform/gcp"
	"github.com/yungbote/tutorbot-backend/internal/platform/logger"
	"github.com/yungbote/tutorbot-backend/internal/seed"
)

// Tooling is the reduced wiring the operator commands run on: config, the
// database and optionally the content bucket, without the HTTP stack.
type Tooling struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Tutorial tutorial.Config
	Folder   string
	Seeder   *seed.Seeder
}

type ToolingOptions struct {
	// TutorialConfigPath overrides TUTORIAL_CONFIG when set.
	TutorialConfigPath string
	WithBucket         bool
}

func NewTooling(opts ToolingOptions) (*Tooling, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg := LoadConfig(log)
	if opts.TutorialConfigPath != "" {
		cfg.TutorialConfigPath = opts.TutorialConfigPath
	}
	tcfg, err := tutorial.LoadConfig(cfg.TutorialConfigPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load tutorial config: %w", err)
	}

	var bucket gcp.ContentBucket
	if opts.WithBucket {
		b, err := resolveContentBucket(log, cfg)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init content bucket: %w", err)
		}
		bucket = b
	}

	theDB, err := openDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(theDB, log)
	seeder := seed.New(log, theDB, reposet.QAEntry, reposet.StepContent, bucket)

	return &Tooling{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Tutorial: tcfg,
		Folder:   contentFolder(cfg, tcfg),
		Seeder:   seeder,
	}, nil
}

// Curriculum returns the validated curriculum of the loaded tutorial.
func (t *Tooling) Curriculum() (tutorial.Curriculum, error) {
	return tutorial.NewCurriculum(t.Tutorial.Curriculum)
}

func (t *Tooling) Close() {
	if t == nil {
		return
	}
	closeDB(t.DB)
	if t.Log != nil {
		t.Log.Sync()
	}
}
