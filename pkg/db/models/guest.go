package models

import "time"

// Guest is a person who can hold reservations.
type Guest struct {
	ID        uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string     `gorm:"column:name;not null"`
	Document  string     `gorm:"column:document;type:varchar(32);uniqueIndex;not null"`
	Phone     string     `gorm:"column:phone"`
	Plate     string     `gorm:"column:plate"`
	BirthDate *time.Time `gorm:"column:birth_date"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
