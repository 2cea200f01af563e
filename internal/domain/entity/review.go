package entity

import "time"

// Review is a buyer's review of a seller, tied to the item that was bought.
type Review struct {
	ID         string    `json:"id" firestore:"id"`
	ItemID     string    `json:"item_id" firestore:"itemId"`
	SellerID   string    `json:"seller_id" firestore:"sellerId"`
	ReviewerID string    `json:"reviewer_id" firestore:"reviewerId"`
	Rating     int       `json:"rating" firestore:"rating"`
	Comment    string    `json:"comment,omitempty" firestore:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}
