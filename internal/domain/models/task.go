// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task is a unit of volunteer work published by an organization.
//
// Field names match the documents the mobile and web clients already
// consume, so bson/json tags stay camelCase.
//
// NOTE:
//   - Organization is a denormalized snapshot taken from the creating
//     user at create time; it is not re-read when the org is edited.
//   - For hasManyAssignee tasks the task-level Status never leaves
//     available/hidden/deleted; the authoritative per-user status lives in
//     the embedded TaskRef on each assignee's User document.
type Task struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Location        *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	Status          string             `bson:"status" json:"status"`
	Priority        string             `bson:"priority" json:"priority"`
	Type            string             `bson:"type" json:"type"`
	OwnerID         primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Organization    *OrgSnapshot       `bson:"organization,omitempty" json:"organization,omitempty"`
	Date            *time.Time         `bson:"date,omitempty" json:"date,omitempty"`
	Duration        int                `bson:"duration,omitempty" json:"duration,omitempty"`
	HasManyAssignee bool               `bson:"hasManyAssignee" json:"hasManyAssignee"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// GeoPoint is a GeoJSON Point, indexed 2dsphere.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from a latitude/longitude pair.
func NewGeoPoint(lat, lng float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// OrgSnapshot is the denormalized organization reference embedded on
// tasks and users.
type OrgSnapshot struct {
	ID    primitive.ObjectID `bson:"id" json:"id"`
	Title string             `bson:"title" json:"title"`
	Type  string             `bson:"type" json:"type"`
}

// Task status identifiers stored in Task.Status and TaskRef.Status.
const (
	TaskStatusAvailable  = "available"
	TaskStatusInProgress = "in_progress"
	TaskStatusHidden     = "hidden"
	TaskStatusDone       = "done"
	TaskStatusDeleted    = "deleted"
	TaskStatusAssigned   = "assigned"
)

// TaskStatuses is the full set of allowed task status identifiers.
var TaskStatuses = []string{
	TaskStatusAvailable,
	TaskStatusInProgress,
	TaskStatusHidden,
	TaskStatusDone,
	TaskStatusDeleted,
	TaskStatusAssigned,
}

// Task priority identifiers.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityHot    = "hot"
	TaskPriorityExtra  = "extra"
)

// TaskPriorities is the full set of allowed task priority identifiers.
var TaskPriorities = []string{
	TaskPriorityLow,
	TaskPriorityMedium,
	TaskPriorityHigh,
	TaskPriorityHot,
	TaskPriorityExtra,
}

// Task type identifiers.
const (
	TaskTypeAuto    = "auto"
	TaskTypeAnimals = "animals"
	TaskTypeRemote  = "remote"
	TaskTypeDonate  = "donate"
	TaskTypeOther   = "other"
)

// TaskTypes is the full set of allowed task type identifiers.
var TaskTypes = []string{
	TaskTypeAuto,
	TaskTypeAnimals,
	TaskTypeRemote,
	TaskTypeDonate,
	TaskTypeOther,
}

// Defaults applied when a task is created without explicit values.
const (
	DefaultTaskStatus   = TaskStatusAvailable
	DefaultTaskPriority = TaskPriorityMedium
	DefaultTaskType     = TaskTypeOther
)

// HiddenTaskStatuses are excluded from every task listing.
var HiddenTaskStatuses = []string{TaskStatusHidden, TaskStatusDeleted}

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool { return contains(TaskStatuses, s) }

// ValidTaskPriority reports whether p is a known task priority.
func ValidTaskPriority(p string) bool { return contains(TaskPriorities, p) }

// ValidTaskType reports whether t is a known task type.
func ValidTaskType(t string) bool { return contains(TaskTypes, t) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
