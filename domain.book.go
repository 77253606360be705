package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book represents a book entity. The category field only holds
// the identifier of the referenced category.
type Book struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Title     string             `json:"title" bson:"title"`
	Price     float64            `json:"price" bson:"price"`
	Rating    float64            `json:"rating" bson:"rating"`
	Category  primitive.ObjectID `json:"category" bson:"category"`
	ImgURL    string             `json:"imgUrl,omitempty" bson:"imgUrl,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// BookView is a book with its category reference resolved. Category
// is nil when the reference is dangling.
type BookView struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	Price     float64            `json:"price"`
	Rating    float64            `json:"rating"`
	Category  *CategoryRef       `json:"category"`
	ImgURL    string             `json:"imgUrl,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Resolve attaches the given category projection to the book.
func (b Book) Resolve(ref *CategoryRef) BookView {
	return BookView{
		ID:        b.ID,
		Title:     b.Title,
		Price:     b.Price,
		Rating:    b.Rating,
		Category:  ref,
		ImgURL:    b.ImgURL,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// BookInput is the payload accepted to create a book. Numbers are
// pointers so a missing value can be told apart from zero.
type BookInput struct {
	Title    string   `json:"title" validate:"required"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Rating   *float64 `json:"rating" validate:"required,gte=1,lte=10"`
	Category string   `json:"category" validate:"required,objectid"`
	ImgURL   string   `json:"imgUrl"`
}

// BookPatch is the payload accepted to update a book. Nil fields are
// left untouched on the stored record.
type BookPatch struct {
	Title    *string  `json:"title" validate:"omitnil,min=1"`
	Price    *float64 `json:"price" validate:"omitnil,gte=0"`
	Rating   *float64 `json:"rating" validate:"omitnil,gte=1,lte=10"`
	Category *string  `json:"category" validate:"omitnil,objectid"`
	ImgURL   *string  `json:"imgUrl"`
}

// Apply merges the provided fields into the book. The patch must
// have been validated beforehand.
func (p BookPatch) Apply(book *Book) {
	if p.Title != nil {
		book.Title = *p.Title
	}
	if p.Price != nil {
		book.Price = *p.Price
	}
	if p.Rating != nil {
		book.Rating = *p.Rating
	}
	if p.Category != nil {
		if oid, err := primitive.ObjectIDFromHex(*p.Category); err == nil {
			book.Category = oid
		}
	}
	if p.ImgURL != nil {
		book.ImgURL = *p.ImgURL
	}
}

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	RecordStorage[Book]
	GetAllByCategory(ctx context.Context, categoryID string) ([]Book, error)
}
