// internal/domain/models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation is a single-use, time-limited token binding an email to an
// inviting user and an organization. Redemption deletes the document.
type Invitation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token          string             `bson:"token" json:"token"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Email          string             `bson:"email" json:"email"`
	Expires        time.Time          `bson:"expires" json:"expires"`
}

// Expired reports whether the invitation is past its expiry at now.
func (i Invitation) Expired(now time.Time) bool { return now.After(i.Expires) }
