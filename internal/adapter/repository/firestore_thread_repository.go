package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"trocly/internal/domain/entity"
	"trocly/internal/domain/repository"
	"trocly/pkg/errors"
	"trocly/pkg/logger"
)

type firestoreThreadRepository struct {
	client *firestore.Client
}

func NewFirestoreThreadRepository(client *firestore.Client) repository.ThreadRepository {
	return &firestoreThreadRepository{
		client: client,
	}
}

func (r *firestoreThreadRepository) threadRef(id string) *firestore.DocumentRef {
	return r.client.Collection("threads").Doc(id)
}

func (r *firestoreThreadRepository) messageRef(threadID, messageID string) *firestore.DocumentRef {
	return r.threadRef(threadID).Collection("messages").Doc(messageID)
}

// CreateOrGet performs the existence check and the create inside one
// transaction, so two users racing on first contact cannot produce two
// documents at the same id. A lost race surfaces as AlreadyExists on commit
// and is resolved by a single re-read.
func (r *firestoreThreadRepository) CreateOrGet(ctx context.Context, thread *entity.Thread, itemID string) (*entity.Thread, bool, error) {
	docRef := r.threadRef(thread.ID)

	var result entity.Thread
	var created bool

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return err
			}

			now := time.Now()
			thread.CreatedAt = now
			thread.UpdatedAt = now
			if itemID != "" {
				thread.DiscussedItemIDs = appendUnique(thread.DiscussedItemIDs, itemID)
			}

			result = *thread
			created = true
			return tx.Create(docRef, thread)
		}

		if err := doc.DataTo(&result); err != nil {
			return err
		}
		created = false

		if itemID != "" && !containsString(result.DiscussedItemIDs, itemID) {
			result.DiscussedItemIDs = append(result.DiscussedItemIDs, itemID)
			return tx.Update(docRef, []firestore.Update{
				{Path: "discussedItemIds", Value: firestore.ArrayUnion(itemID)},
				{Path: "updatedAt", Value: time.Now()},
			})
		}
		return nil
	})

	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			// Lost the creation race; the other caller's document is ours too.
			logger.Info("CreateOrGet: creation race on thread %s, re-reading", thread.ID)
			existing, getErr := r.GetByID(ctx, thread.ID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, errors.FromFirestore("create thread", err)
	}

	return &result, created, nil
}

func (r *firestoreThreadRepository) GetByID(ctx context.Context, id string) (*entity.Thread, error) {
	doc, err := r.threadRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.ThreadNotFound(id, err)
		}
		return nil, errors.FromFirestore("get thread", err)
	}

	var thread entity.Thread
	if err := doc.DataTo(&thread); err != nil {
		return nil, errors.Unexpected("Failed to parse thread data", err)
	}

	return &thread, nil
}

func (r *firestoreThreadRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Thread, int64, error) {
	query := r.client.Collection("threads").
		Where("participantIds", "array-contains", userID).
		OrderBy("lastMessageAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching threads for user %s: %v", userID, err)
		return nil, 0, errors.FromFirestore("list threads", err)
	}

	total := int64(len(allDocs))

	start := offset
	end := len(allDocs)
	if limit > 0 {
		end = start + limit
		if end > len(allDocs) {
			end = len(allDocs)
		}
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var threads []*entity.Thread
	for i := start; i < end; i++ {
		var thread entity.Thread
		if err := allDocs[i].DataTo(&thread); err != nil {
			logger.Warn("Skipping malformed thread document for user %s: %v", userID, err)
			continue
		}
		threads = append(threads, &thread)
	}

	return threads, total, nil
}

// AppendMessage commits the message and every thread-level side effect of a
// send in one transaction: the item snapshot is re-read fresh here, never
// cached, and the recipient's delete/unread entries are touched only with
// array union/remove so a concurrent writer on the other user's entries is
// never clobbered.
func (r *firestoreThreadRepository) AppendMessage(ctx context.Context, threadID string, message *entity.Message, preview string) (*entity.Thread, error) {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.ThreadID = threadID
	message.Timestamp = time.Now()
	message.ReadBy = []string{message.SenderID}

	threadRef := r.threadRef(threadID)
	msgRef := r.messageRef(threadID, message.ID)
	itemRef := r.client.Collection("items").Doc(message.ItemID)

	var updated entity.Thread

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		threadDoc, err := tx.Get(threadRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.ThreadNotFound(threadID, err)
			}
			return err
		}

		var thread entity.Thread
		if err := threadDoc.DataTo(&thread); err != nil {
			return errors.Unexpected("Failed to parse thread data", err)
		}

		if thread.BlockedBy != "" {
			return errors.ConversationBlocked("This conversation is blocked")
		}
		if !thread.IsParticipant(message.SenderID) {
			return errors.Forbidden("User is not a participant in this thread", nil)
		}

		// Fresh item snapshot; transactions require all reads before writes.
		itemDoc, err := tx.Get(itemRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Item", err)
			}
			return err
		}
		var item entity.Item
		if err := itemDoc.DataTo(&item); err != nil {
			return errors.Unexpected("Failed to parse item data", err)
		}

		recipientID := thread.OtherParticipant(message.SenderID)

		if err := tx.Create(msgRef, message); err != nil {
			return err
		}

		updates := []firestore.Update{
			{Path: "lastMessageText", Value: preview},
			{Path: "lastMessageSenderId", Value: message.SenderID},
			{Path: "lastMessageAt", Value: message.Timestamp},
			{Path: "seenLatestBy", Value: []string{message.SenderID}},
			{Path: "itemId", Value: item.ID},
			{Path: "itemTitle", Value: item.Title},
			{Path: "itemImageUrl", Value: item.MainImageURL()},
			{Path: "itemSellerId", Value: item.SellerID},
			{Path: "discussedItemIds", Value: firestore.ArrayUnion(message.ItemID)},
			{Path: "deletedFor", Value: firestore.ArrayRemove(recipientID)},
			{FieldPath: firestore.FieldPath{"unreadItemsFor", recipientID}, Value: firestore.ArrayUnion(message.ItemID)},
			{Path: "updatedAt", Value: message.Timestamp},
		}
		if err := tx.Update(threadRef, updates); err != nil {
			return err
		}

		// Mirror the committed state for the caller.
		updated = thread
		updated.LastMessageText = preview
		updated.LastMessageSenderID = message.SenderID
		updated.LastMessageAt = message.Timestamp
		updated.SeenLatestBy = []string{message.SenderID}
		updated.ItemID = item.ID
		updated.ItemTitle = item.Title
		updated.ItemImageURL = item.MainImageURL()
		updated.ItemSellerID = item.SellerID
		updated.DiscussedItemIDs = appendUnique(updated.DiscussedItemIDs, message.ItemID)
		updated.DeletedFor = removeString(updated.DeletedFor, recipientID)
		if updated.UnreadItemsFor == nil {
			updated.UnreadItemsFor = make(map[string][]string)
		}
		updated.UnreadItemsFor[recipientID] = appendUnique(updated.UnreadItemsFor[recipientID], message.ItemID)
		updated.UpdatedAt = message.Timestamp
		return nil
	})

	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.FromFirestore("append message", err)
	}

	return &updated, nil
}

func (r *firestoreThreadRepository) GetMessagesByItem(ctx context.Context, threadID, itemID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.threadRef(threadID).Collection("messages").
		Where("itemId", "==", itemID).
		OrderBy("timestamp", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching messages for thread %s item %s: %v", threadID, itemID, err)
		return nil, 0, errors.FromFirestore("list messages", err)
	}

	total := int64(len(allDocs))

	start := offset
	end := len(allDocs)
	if limit > 0 {
		end = start + limit
		if end > len(allDocs) {
			end = len(allDocs)
		}
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var messages []*entity.Message
	for i := start; i < end; i++ {
		var message entity.Message
		if err := allDocs[i].DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message in thread %s: %v", threadID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreThreadRepository) MarkThreadSeen(ctx context.Context, threadID, userID string) error {
	_, err := r.threadRef(threadID).Update(ctx, []firestore.Update{
		{Path: "seenLatestBy", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.ThreadNotFound(threadID, err)
		}
		return errors.FromFirestore("mark thread seen", err)
	}
	return nil
}

func (r *firestoreThreadRepository) MarkItemRead(ctx context.Context, threadID, itemID, userID string) error {
	_, err := r.threadRef(threadID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"unreadItemsFor", userID}, Value: firestore.ArrayRemove(itemID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.ThreadNotFound(threadID, err)
		}
		return errors.FromFirestore("mark item read", err)
	}
	return nil
}

func (r *firestoreThreadRepository) MarkMessageRead(ctx context.Context, threadID, messageID, userID string) error {
	_, err := r.messageRef(threadID, messageID).Update(ctx, []firestore.Update{
		{Path: "readBy", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// Old or already-removed message; a read receipt on it is a no-op.
			logger.Warn("MarkMessageRead: message %s not found in thread %s", messageID, threadID)
			return nil
		}
		return errors.FromFirestore("mark message read", err)
	}
	return nil
}

func (r *firestoreThreadRepository) DeleteForUser(ctx context.Context, threadID, userID string) error {
	_, err := r.threadRef(threadID).Update(ctx, []firestore.Update{
		{Path: "deletedFor", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.ThreadNotFound(threadID, err)
		}
		return errors.FromFirestore("delete thread for user", err)
	}
	return nil
}

func (r *firestoreThreadRepository) DeleteItemConversationForUser(ctx context.Context, threadID, itemID, userID string) error {
	_, err := r.threadRef(threadID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"itemConversationsDeletedFor", userID}, Value: firestore.ArrayUnion(itemID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.ThreadNotFound(threadID, err)
		}
		return errors.FromFirestore("delete item conversation for user", err)
	}
	return nil
}

func (r *firestoreThreadRepository) SetBlocked(ctx context.Context, threadID, blockerID string) error {
	var value interface{} = blockerID
	if blockerID == "" {
		value = firestore.Delete
	}

	_, err := r.threadRef(threadID).Update(ctx, []firestore.Update{
		{Path: "blockedBy", Value: value},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.ThreadNotFound(threadID, err)
		}
		return errors.FromFirestore("update thread block state", err)
	}
	return nil
}

func (r *firestoreThreadRepository) WatchByUserID(ctx context.Context, userID string) (<-chan []*entity.Thread, error) {
	query := r.client.Collection("threads").
		Where("participantIds", "array-contains", userID).
		OrderBy("lastMessageAt", firestore.Desc)

	ch := make(chan []*entity.Thread)
	go func() {
		defer close(ch)

		iter := query.Snapshots(ctx)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					logger.Error("Thread watch for user %s ended: %v", userID, err)
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("Thread watch for user %s failed to read snapshot: %v", userID, err)
				return
			}

			var threads []*entity.Thread
			for _, doc := range docs {
				var thread entity.Thread
				if err := doc.DataTo(&thread); err != nil {
					continue
				}
				threads = append(threads, &thread)
			}

			select {
			case ch <- threads:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (r *firestoreThreadRepository) WatchMessagesByItem(ctx context.Context, threadID, itemID string) (<-chan []*entity.Message, error) {
	query := r.threadRef(threadID).Collection("messages").
		Where("itemId", "==", itemID).
		OrderBy("timestamp", firestore.Asc)

	ch := make(chan []*entity.Message)
	go func() {
		defer close(ch)

		iter := query.Snapshots(ctx)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					logger.Error("Message watch for thread %s item %s ended: %v", threadID, itemID, err)
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("Message watch for thread %s failed to read snapshot: %v", threadID, err)
				return
			}

			var messages []*entity.Message
			for _, doc := range docs {
				var message entity.Message
				if err := doc.DataTo(&message); err != nil {
					continue
				}
				messages = append(messages, &message)
			}

			select {
			case ch <- messages:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func appendUnique(slice []string, item string) []string {
	if containsString(slice, item) {
		return slice
	}
	return append(slice, item)
}

func removeString(slice []string, item string) []string {
	var out []string
	for _, s := range slice {
		if s != item {
			out = append(out, s)
		}
	}
	return out
}
