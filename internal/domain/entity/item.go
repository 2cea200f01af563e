package entity

import "time"

type Item struct {
	ID          string   `json:"id" firestore:"id"`
	SellerID    string   `json:"seller_id" firestore:"sellerId"`
	SellerName  string   `json:"seller_name" firestore:"sellerName"`
	Title       string   `json:"title" firestore:"title"`
	Description string   `json:"description" firestore:"description"`
	Category    string   `json:"category" firestore:"category"`
	Keywords    []string `json:"keywords" firestore:"keywords"`
	Price       float64  `json:"price" firestore:"price"`
	ImageURLs   []string `json:"image_urls" firestore:"imageUrls"`
	IsSold      bool     `json:"is_sold" firestore:"isSold"`
	Views       int      `json:"views" firestore:"views"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// MainImageURL returns the first image, if any. Used when denormalizing the
// item snapshot onto a thread.
func (i *Item) MainImageURL() string {
	if len(i.ImageURLs) == 0 {
		return ""
	}
	return i.ImageURLs[0]
}

// ItemView records a single browse of an item by a user. The recent slice of
// these feeds the recommendation filter.
type ItemView struct {
	ID       string    `json:"id" firestore:"id"`
	UserID   string    `json:"user_id" firestore:"userId"`
	ItemID   string    `json:"item_id" firestore:"itemId"`
	Category string    `json:"category" firestore:"category"`
	Keywords []string  `json:"keywords" firestore:"keywords"`
	ViewedAt time.Time `json:"viewed_at" firestore:"viewedAt"`
}
