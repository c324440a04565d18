// Package store is the GORM-backed persistence layer for the pipeline
// components. Each consumer package declares the narrow interface it needs;
// Store satisfies all of them. Every mutation is either a single-row field
// overwrite or a single-row atomic increment, so no cross-row transactions
// are taken.
package store

import (
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}
