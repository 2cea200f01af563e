package repository

import (
	"context"

	"trocly/internal/domain/entity"
)

// ThreadRepository persists threads and their per-item message
// sub-collections. Implementations must guarantee that CreateOrGet and
// AppendMessage are single atomic transactions, and that all per-user set
// fields are mutated with set union/difference primitives rather than
// whole-document overwrites.
type ThreadRepository interface {
	// CreateOrGet resolves the thread at thread.ID, creating it when absent.
	// When the thread already exists and itemID is non-empty and new, itemID
	// is appended to discussedItemIds. The bool result reports creation.
	CreateOrGet(ctx context.Context, thread *entity.Thread, itemID string) (*entity.Thread, bool, error)

	GetByID(ctx context.Context, id string) (*entity.Thread, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Thread, int64, error)

	// AppendMessage atomically creates the message and applies every
	// thread-level side effect of a send: preview denormalization, item
	// snapshot refresh, seen-latest reset, recipient undelete and recipient
	// unread marking. The returned thread reflects the committed state.
	AppendMessage(ctx context.Context, threadID string, message *entity.Message, preview string) (*entity.Thread, error)

	GetMessagesByItem(ctx context.Context, threadID, itemID string, limit, offset int) ([]*entity.Message, int64, error)

	MarkThreadSeen(ctx context.Context, threadID, userID string) error
	MarkItemRead(ctx context.Context, threadID, itemID, userID string) error
	MarkMessageRead(ctx context.Context, threadID, messageID, userID string) error

	DeleteForUser(ctx context.Context, threadID, userID string) error
	DeleteItemConversationForUser(ctx context.Context, threadID, itemID, userID string) error

	// SetBlocked sets blockedBy to blockerID; an empty blockerID clears it.
	SetBlocked(ctx context.Context, threadID, blockerID string) error

	// WatchByUserID streams the user's thread list on every change until ctx
	// is cancelled. The channel is closed when the watch ends.
	WatchByUserID(ctx context.Context, userID string) (<-chan []*entity.Thread, error)

	// WatchMessagesByItem streams one item-conversation's messages on every
	// change until ctx is cancelled.
	WatchMessagesByItem(ctx context.Context, threadID, itemID string) (<-chan []*entity.Message, error)
}
