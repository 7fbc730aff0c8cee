// internal/domain/models/doorlog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Door states.
const (
	DoorStateOpen  = "OPEN"
	DoorStateClose = "CLOSE"
)

// DoorStates is the full set of allowed door states.
var DoorStates = []string{DoorStateOpen, DoorStateClose}

// ValidDoorState reports whether s is a known door state.
func ValidDoorState(s string) bool { return contains(DoorStates, s) }

// DoorLog is an immutable, timestamped door-sensor event. Append-only.
type DoorLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	State     string             `bson:"state" json:"state"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
