package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Assessment struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobId         *uuid.UUID     `gorm:"type:uuid;index"`
	RequesterId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	AthleteName   string         `gorm:"type:varchar(255);not null;index"`
	Mode          string         `gorm:"type:varchar(20);not null"`
	Style         string         `gorm:"type:varchar(50)"`
	OverallScore  int            `gorm:"default:0"`
	StandingScore int            `gorm:"default:0"`
	TopScore      int            `gorm:"default:0"`
	BottomScore   int            `gorm:"default:0"`
	Document      datatypes.JSON `gorm:"type:jsonb;not null"`
	QualityFlags  datatypes.JSON `gorm:"type:jsonb"`
	MatchContext  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
}

func (Assessment) TableName() string {
	return "assessments"
}
