// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization type identifiers.
const (
	OrgTypeShelter   = "shelter"
	OrgTypeGrooming  = "grooming"
	OrgTypePetClinic = "pet_clinic"
)

// OrgTypes is the full set of allowed organization types.
var OrgTypes = []string{OrgTypeShelter, OrgTypeGrooming, OrgTypePetClinic}

// DefaultOrgType is used when an organization is created without a type.
const DefaultOrgType = OrgTypeShelter

// ValidOrgType reports whether t is a known organization type.
func ValidOrgType(t string) bool { return contains(OrgTypes, t) }

// Organization is a shelter, grooming service, or pet clinic that
// publishes tasks. TaskStats mirrors organization-scoped task activity
// and is moved by the task lifecycle, never recomputed.
type Organization struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Type        string             `bson:"type" json:"type"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Latitude    float64            `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude   float64            `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`

	Tasks     []TaskRef    `bson:"tasks" json:"tasks"`
	TaskStats OrgTaskStats `bson:"taskStats" json:"taskStats"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OrgTaskStats is the denormalized per-organization task counter cache.
type OrgTaskStats struct {
	All    int `bson:"all" json:"all"`
	Active int `bson:"active" json:"active"`
	Done   int `bson:"done" json:"done"`
}

// Snapshot returns the denormalized reference embedded on tasks and users.
func (o *Organization) Snapshot() *OrgSnapshot {
	return &OrgSnapshot{ID: o.ID, Title: o.Title, Type: o.Type}
}
