package models

import (
	"time"

	"neurovisa/evaluator"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User defines an applicant account
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashedPassword" json:"-"`
	FullName       string             `bson:"fullName" json:"full_name"`
	VisaType       string             `bson:"visaType" json:"visa_type"`
	TargetCountry  string             `bson:"targetCountry" json:"target_country"`
	IsActive       bool               `bson:"isActive" json:"is_active"`
	CreatedAt      time.Time          `bson:"createdAt" json:"created_at"`
}

// Profile is the subset used to tailor interview questions
func (u *User) Profile() evaluator.UserProfile {
	return evaluator.UserProfile{VisaType: u.VisaType, TargetCountry: u.TargetCountry}
}
