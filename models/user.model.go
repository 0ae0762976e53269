package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddressLine is one postal address
type AddressLine struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	Pincode int    `bson:"pincode" json:"pincode"`
}

// Address holds the shipping and billing addresses of a user.
type Address struct {
	Shipping AddressLine `bson:"shipping" json:"shipping"`
	Billing  AddressLine `bson:"billing" json:"billing"`
}

// User represents a registered customer
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FName        string             `bson:"fname" json:"fname"`
	LName        string             `bson:"lname" json:"lname"`
	Email        string             `bson:"email" json:"email"`
	ProfileImage string             `bson:"profile_image" json:"profileImage"`
	Phone        string             `bson:"phone" json:"phone"`
	Password     string             `bson:"password,omitempty" json:"-"`
	Address      Address            `bson:"address" json:"address"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}
