// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleUser         = "user"
	RoleAdmin        = "admin"
	RoleOrganization = "organization"
)

// Roles is the full set of allowed user roles.
var Roles = []string{RoleUser, RoleAdmin, RoleOrganization}

// DefaultRole is assigned at registration when no role is given.
const DefaultRole = RoleUser

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool { return contains(Roles, r) }

// User represents volunteers, admins, and organization accounts.
//
// Tasks holds lightweight references to the tasks the user has taken;
// each entry carries its own status copy, which is the authoritative
// completion record for hasManyAssignee tasks.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"` // bcrypt hash
	FirstName    string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Picture      string             `bson:"picture,omitempty" json:"picture,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         string             `bson:"role" json:"role"`
	Organization *OrgSnapshot       `bson:"organization,omitempty" json:"organization,omitempty"`
	Latitude     float64            `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude    float64            `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Rating       float64            `bson:"rating,omitempty" json:"rating,omitempty"`
	TelegramID   string             `bson:"telegramId,omitempty" json:"telegramId,omitempty"`

	Notifications Notifications `bson:"notifications,omitempty" json:"notifications,omitempty"`
	Tasks         []TaskRef     `bson:"tasks" json:"tasks"`
	TaskStats     UserTaskStats `bson:"taskStats" json:"taskStats"`
	Services      Services      `bson:"services,omitempty" json:"services,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Notifications holds the user's opt-in flags for the side channels.
type Notifications struct {
	Telegram bool `bson:"telegram,omitempty" json:"telegram,omitempty"`
}

// Services holds external identity-provider ids attached to the account.
type Services struct {
	VK string `bson:"vk,omitempty" json:"vk,omitempty"`
}

// TaskRef is the embedded reference a user (or organization) keeps for a
// task it is involved with. Status is a copy of the task-level status for
// single-assignee tasks and the authoritative record for many-assignee
// tasks.
type TaskRef struct {
	TaskID  primitive.ObjectID `bson:"taskId" json:"taskId"`
	Title   string             `bson:"title" json:"title"`
	Status  string             `bson:"status" json:"status"`
	TakenAt time.Time          `bson:"takenAt" json:"takenAt"`
}

// UserTaskStats is the denormalized per-user task counter cache.
type UserTaskStats struct {
	All    int `bson:"all" json:"all"`
	Undone int `bson:"undone" json:"undone"`
	Done   int `bson:"done" json:"done"`
}

// FullName returns the display name used in greetings and emails.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}
