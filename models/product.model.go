package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sizes a product may be offered in.
var AvailableSizes = []string{"S", "XS", "M", "X", "L", "XXL", "XL"}

// Product is a catalog entry. Deleted products keep their document with
// IsDeleted set and are hidden from every lookup.
type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Price          Money              `bson:"price" json:"price"`
	CurrencyID     string             `bson:"currency_id" json:"currencyId"`
	CurrencyFormat string             `bson:"currency_format" json:"currencyFormat"`
	IsFreeShipping bool               `bson:"is_free_shipping" json:"isFreeShipping"`
	ProductImage   string             `bson:"product_image" json:"productImage"`
	Style          string             `bson:"style,omitempty" json:"style,omitempty"`
	AvailableSizes []string           `bson:"available_sizes" json:"availableSizes"`
	Installments   int                `bson:"installments,omitempty" json:"installments,omitempty"`
	IsDeleted      bool               `bson:"is_deleted" json:"isDeleted"`
	DeletedAt      *time.Time         `bson:"deleted_at" json:"deletedAt"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}
