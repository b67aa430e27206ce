package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Riddle is a puzzle text shared by one or more teams, keyed by its content
type Riddle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"riddle_text"`
	TextHash  string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	LeadName  string    `gorm:"type:varchar(100)" json:"lead_name"`
	CreatedAt time.Time `json:"created_at"`
}

// HashRiddleText returns the content key used for the unique index on riddles
func HashRiddleText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
