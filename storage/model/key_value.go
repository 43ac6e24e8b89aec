package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	KeyValueScopeGlobal  = ""
	KeyValueScopeService = "service"

	KeyValueKeyLastRequester = "last_requester"
)

// KeyValue stores arbitrary key-value data.
//
// Values are stored as JSON, using the database JSON type where available
// (e.g. PostgreSQL, MySQL) and TEXT elsewhere (e.g. SQLite). The Scope field
// namespaces keys so different features cannot collide.
type KeyValue struct {
	CreatedAt int            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int            `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Scope allows grouping keys by namespace; empty string is global scope.
	Scope string `gorm:"primaryKey" json:"scope"`

	// Key is the identifier within a scope.
	Key string `gorm:"primaryKey" json:"key"`

	// Value is stored as native JSON/JSONB (where supported) using datatypes.JSON.
	Value datatypes.JSON `json:"value"`
}

// KeyValueStore defines the operations the service needs from scoped
// key-value storage.
type KeyValueStore interface {
	// Get retrieves the value for a (scope, key). Returns (nil, nil) if not found.
	Get(scope, key string) (datatypes.JSON, error)

	// Set stores/replaces the value for a (scope, key).
	Set(scope, key string, value datatypes.JSON) error

	// Delete removes the entry for a (scope, key). No error if missing.
	Delete(scope, key string) error

	// GetAs retrieves and unmarshals the value for (scope, key) into out.
	GetAs(scope, key string, out any) (bool, error)

	// SetAny marshals v to JSON and stores it at (scope, key).
	SetAny(scope, key string, v any) error
}
