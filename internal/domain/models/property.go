// internal/domain/models/property.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PropAlarmEnabled is the property that arms door notifications.
const PropAlarmEnabled = "ALARM_ENABLED"

// Property is a single mutable global configuration row. At most one
// document exists per Name.
type Property struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Value string             `bson:"value" json:"value"`
}

// Bool interprets the property value as a flag ("true" enables).
func (p Property) Bool() bool { return p.Value == "true" }
