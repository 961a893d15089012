package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Scope is the application (and optional object) boundary a checkpoint is
// attached to. Checkpoints never cross scopes; restores and the scope lock
// operate at the application level.
type Scope struct {
	AppID    uuid.UUID  `json:"app_id"`
	ObjectID *uuid.UUID `json:"object_id,omitempty"`
}

func AppScope(appID uuid.UUID) Scope {
	return Scope{AppID: appID}
}

func ObjectScope(appID, objectID uuid.UUID) Scope {
	return Scope{AppID: appID, ObjectID: &objectID}
}

func (s Scope) Valid() bool {
	return s.AppID != uuid.Nil
}

// Key is the lock/session key for the scope. Locking is app-wide because
// referential integrity spans objects within one application.
func (s Scope) Key() string {
	return fmt.Sprintf("app:%s", s.AppID)
}

func (s Scope) String() string {
	if s.ObjectID != nil {
		return fmt.Sprintf("app:%s/object:%s", s.AppID, *s.ObjectID)
	}
	return s.Key()
}
