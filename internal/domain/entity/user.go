package entity

import "time"

type User struct {
	ID        string `json:"id" firestore:"id"`
	Name      string `json:"name" firestore:"name"`
	AvatarURL string `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`
	Bio       string `json:"bio,omitempty" firestore:"bio,omitempty"`
	City      string `json:"city,omitempty" firestore:"city,omitempty"`

	SellerRating      float64 `json:"seller_rating,omitempty" firestore:"sellerRating,omitempty"`
	SellerReviewCount int     `json:"seller_review_count,omitempty" firestore:"sellerReviewCount,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
