package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills an empty primary key with a random UUID before insert.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	assignID(&w.ID)
	return nil
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}
