package entity

import "time"

// Message is immutable once created except for growth of ReadBy. Every
// message belongs to exactly one item-conversation within its thread.
type Message struct {
	ID         string    `json:"id" firestore:"id"`
	ThreadID   string    `json:"thread_id" firestore:"threadId"`
	ItemID     string    `json:"item_id" firestore:"itemId"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	SenderName string    `json:"sender_name" firestore:"senderName"`
	Text       string    `json:"text,omitempty" firestore:"text,omitempty"`
	ImageURL   string    `json:"image_url,omitempty" firestore:"imageUrl,omitempty"`
	AudioURL   string    `json:"audio_url,omitempty" firestore:"audioUrl,omitempty"`
	ReadBy     []string  `json:"read_by" firestore:"readBy"`
	Timestamp  time.Time `json:"timestamp" firestore:"timestamp"`
}
