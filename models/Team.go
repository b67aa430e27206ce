package models

import "time"

// Team is an event participant. The username doubles as the login name.
type Team struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	RiddleID     uint       `gorm:"not null;index" json:"riddle_id"`
	Riddle       *Riddle    `gorm:"foreignKey:RiddleID;constraint:OnDelete:RESTRICT" json:"-"`
	FinalAnswer  string     `gorm:"type:varchar(255);not null" json:"-"`
	IsComplete   bool       `gorm:"not null;default:false" json:"is_complete"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
