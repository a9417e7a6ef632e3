package domain

import "time"

// StepContent indexes a tutorial chunk: the content key maps to the object
// name stored under the deployment's content folder.
type StepContent struct {
	Key       string    `gorm:"column:content_key;primaryKey" json:"key"`
	Step      int       `gorm:"column:step;not null;index:idx_step_content_pos,priority:1" json:"step"`
	Substep   int       `gorm:"column:substep;not null;index:idx_step_content_pos,priority:2" json:"substep"`
	Object    string    `gorm:"column:object;not null" json:"object"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (StepContent) TableName() string { return "step_content" }
