package model

import "gorm.io/gorm"

// Group 小组表：对应 groups（同一课程内名称唯一）
type Group struct {
	GroupID   string `gorm:"type:varchar(36);primaryKey"                                   json:"group_id"`
	SubjectID string `gorm:"type:varchar(36);not null;uniqueIndex:uq_group_name_per_subject" json:"subject_id"`
	Name      string `gorm:"type:varchar(120);not null;uniqueIndex:uq_group_name_per_subject" json:"name"`
	BaseModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	Members []User   `gorm:"foreignKey:GroupID"                                                   json:"members,omitempty"`
}

func (Group) TableName() string { return "groups" }

func (g *Group) BeforeCreate(*gorm.DB) error {
	ensureID(&g.GroupID)
	return nil
}
