// Package models defines the persistent entities of the inspection domain.
package models

import "time"

// TrainCategory is the top level of the composition classification.
type TrainCategory string

const (
	// CategoryElektrichka covers electric multiple unit compositions.
	CategoryElektrichka TrainCategory = "elektrichka"
	// CategoryRailBus covers diesel rail bus compositions.
	CategoryRailBus TrainCategory = "rail_bus"
)

// Title returns the human-readable Russian name of the category.
func (c TrainCategory) Title() string {
	switch c {
	case CategoryElektrichka:
		return "Электричка"
	case CategoryRailBus:
		return "Рельсовый автобус"
	}
	return string(c)
}

// Valid reports whether the category is part of the closed enumeration.
func (c TrainCategory) Valid() bool {
	return c == CategoryElektrichka || c == CategoryRailBus
}

// TrainType identifies a concrete composition variant. Every type belongs to
// exactly one TrainCategory.
type TrainType string

const (
	TypeEP2D TrainType = "EP2D"
	TypeEP3D TrainType = "EP3D"
	TypeRA1  TrainType = "RA1"
	TypeRA2  TrainType = "RA2"
	TypeRA3  TrainType = "RA3"
)

// Title returns the human-readable Russian designation of the type.
func (t TrainType) Title() string {
	switch t {
	case TypeEP2D:
		return "ЭП2Д"
	case TypeEP3D:
		return "ЭП3Д"
	case TypeRA1:
		return "РА-1"
	case TypeRA2:
		return "РА-2"
	case TypeRA3:
		return "РА-3"
	}
	return string(t)
}

// Category returns the category the type belongs to.
func (t TrainType) Category() TrainCategory {
	switch t {
	case TypeEP2D, TypeEP3D:
		return CategoryElektrichka
	case TypeRA1, TypeRA2, TypeRA3:
		return CategoryRailBus
	}
	return ""
}

// Valid reports whether the type is part of the closed enumeration.
func (t TrainType) Valid() bool {
	return t.Category() != ""
}

// InspectorRole distinguishes normal staff from administrators.
type InspectorRole string

const (
	RoleUser  InspectorRole = "user"
	RoleAdmin InspectorRole = "admin"
)

// Inspector is a registered depot staff member. The inspection workflow only
// reads inspectors; registration and administration are owned elsewhere.
type Inspector struct {
	ID         int64         `db:"id"`
	TelegramID int64         `db:"telegram_id"`
	FullName   string        `db:"full_name"`
	Position   string        `db:"position"`
	Railway    string        `db:"railway"`
	Branch     string        `db:"branch"`
	Role       InspectorRole `db:"role"`
	IsActive   bool          `db:"is_active"`
	IsBlocked  bool          `db:"is_blocked"`
}

// Inspection is one inspection session of a train composition. It owns an
// ordered set of Blocks created atomically with it and is never deleted.
type Inspection struct {
	ID          int64     `db:"id"`
	TrainNumber string    `db:"train_number"`
	TrainType   TrainType `db:"train_type"`
	InspectorID int64     `db:"inspector_id"`
	CreatedAt   time.Time `db:"created_at"`
	IsCompleted bool      `db:"is_completed"`
}

// Block is one checklist item within an Inspection. While unchecked its notes
// are empty; once checked the notes are non-empty (the pass sentinel or the
// inspector's defect description) and the block is never mutated again.
type Block struct {
	ID           int64  `db:"id"`
	InspectionID int64  `db:"inspection_id"`
	BlockNumber  string `db:"block_number"`
	IsChecked    bool   `db:"is_checked"`
	Notes        string `db:"notes"`
}
