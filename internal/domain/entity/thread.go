package entity

import "time"

// Thread is a persistent two-party conversation. It can span several listed
// items over time; the item-level fields below are a snapshot of whichever
// item the latest message was about.
type Thread struct {
	ID                 string   `json:"id" firestore:"id"`
	ParticipantIDs     []string `json:"participant_ids" firestore:"participantIds"`
	ParticipantNames   []string `json:"participant_names" firestore:"participantNames"`
	ParticipantAvatars []string `json:"participant_avatars" firestore:"participantAvatars"`

	// Append-only set of every item ever discussed in this thread.
	DiscussedItemIDs []string `json:"discussed_item_ids" firestore:"discussedItemIds"`

	LastMessageText     string    `json:"last_message_text,omitempty" firestore:"lastMessageText,omitempty"`
	LastMessageSenderID string    `json:"last_message_sender_id,omitempty" firestore:"lastMessageSenderId,omitempty"`
	LastMessageAt       time.Time `json:"last_message_at" firestore:"lastMessageAt"`

	// Snapshot of the item the latest message belongs to, refreshed on every
	// send from the items collection inside the same transaction.
	ItemID       string `json:"item_id,omitempty" firestore:"itemId,omitempty"`
	ItemTitle    string `json:"item_title,omitempty" firestore:"itemTitle,omitempty"`
	ItemImageURL string `json:"item_image_url,omitempty" firestore:"itemImageUrl,omitempty"`
	ItemSellerID string `json:"item_seller_id,omitempty" firestore:"itemSellerId,omitempty"`

	// Reset to only the sender on each new message.
	SeenLatestBy []string `json:"seen_latest_by" firestore:"seenLatestBy"`

	// Per-user set of item ids with unseen messages, independent of
	// SeenLatestBy. Entries are mutated only with set union/difference so
	// concurrent writers never clobber each other.
	UnreadItemsFor map[string][]string `json:"unread_items_for" firestore:"unreadItemsFor"`

	// Per-user soft delete of the whole thread. An incoming message removes
	// the recipient from this set.
	DeletedFor []string `json:"deleted_for" firestore:"deletedFor"`

	// Per-user soft delete at item granularity. Not reversed by new messages.
	ItemConversationsDeletedFor map[string][]string `json:"item_conversations_deleted_for" firestore:"itemConversationsDeletedFor"`

	// When set, the conversation is frozen for both participants.
	BlockedBy string `json:"blocked_by,omitempty" firestore:"blockedBy,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// IsParticipant reports whether userID is one of the two thread members.
func (t *Thread) IsParticipant(userID string) bool {
	for _, id := range t.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the member that is not userID. Empty string when
// userID itself is not a participant.
func (t *Thread) OtherParticipant(userID string) string {
	for _, id := range t.ParticipantIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

// IsDeletedFor reports whether the whole thread is hidden for userID.
func (t *Thread) IsDeletedFor(userID string) bool {
	for _, id := range t.DeletedFor {
		if id == userID {
			return true
		}
	}
	return false
}

// IsItemDeletedFor reports whether userID has hidden itemID's sub-conversation.
func (t *Thread) IsItemDeletedFor(userID, itemID string) bool {
	for _, id := range t.ItemConversationsDeletedFor[userID] {
		if id == itemID {
			return true
		}
	}
	return false
}
