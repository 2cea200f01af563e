package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"trocly/internal/domain/entity"
	"trocly/internal/domain/repository"
	"trocly/internal/infrastructure/ratelimit"
	ws "trocly/internal/infrastructure/websocket"
	"trocly/pkg/errors"
	"trocly/pkg/logger"
)

const (
	voiceMessagePreview = "🎤 Voice message"
	photoMessagePreview = "📷 Photo"
)

// ThreadIDFor derives the canonical thread id for a pair of users. The id is
// order-independent, so both participants always resolve the same document.
func ThreadIDFor(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return pair[0] + "_" + pair[1]
}

type MessagingUseCase struct {
	threadRepo  repository.ThreadRepository
	userRepo    repository.UserRepository
	itemRepo    repository.ItemRepository
	wsManager   *ws.Manager
	storage     FileStorage
	rateLimiter *ratelimit.RateLimiter
}

func NewMessagingUseCase(
	threadRepo repository.ThreadRepository,
	userRepo repository.UserRepository,
	itemRepo repository.ItemRepository,
	wsManager *ws.Manager,
	storage FileStorage,
	rateLimiter *ratelimit.RateLimiter,
) *MessagingUseCase {
	return &MessagingUseCase{
		threadRepo:  threadRepo,
		userRepo:    userRepo,
		itemRepo:    itemRepo,
		wsManager:   wsManager,
		storage:     storage,
		rateLimiter: rateLimiter,
	}
}

type CreateThreadInput struct {
	RecipientID string
	ItemID      string
}

type SendMessageInput struct {
	ThreadID string
	ItemID   string
	Text     string
	ImageURL string
	AudioURL string
}

// ThreadResponse augments a thread with fields computed for the requesting
// user, so clients never have to reimplement the unread rules.
type ThreadResponse struct {
	*entity.Thread
	OtherUserID   string `json:"other_user_id"`
	OtherUserName string `json:"other_user_name"`
	UnreadCount   int    `json:"unread_count"`
	HasSeenLatest bool   `json:"has_seen_latest"`
}

// CreateOrGetThread resolves the conversation between userID and the
// recipient, creating it when it does not exist yet. Repeated calls for the
// same pair always return the same thread.
func (uc *MessagingUseCase) CreateOrGetThread(ctx context.Context, userID string, input CreateThreadInput) (*ThreadResponse, error) {
	if input.RecipientID == "" || input.RecipientID == userID {
		return nil, errors.InvalidParticipants("A conversation needs two distinct users", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(userID, "create_thread")
	if !allowed {
		logger.Warn("CreateOrGetThread rate limited: user %s must wait %v", userID, waitTime)
		return nil, errors.RateLimited("Too many new conversations. Please wait before starting another", waitTime)
	}

	sender, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	recipient, err := uc.userRepo.GetByID(ctx, input.RecipientID)
	if err != nil {
		return nil, err
	}

	// Names and avatars are stored positionally aligned with the sorted
	// participant ids.
	thread := &entity.Thread{
		ID:             ThreadIDFor(userID, input.RecipientID),
		ParticipantIDs: []string{userID, input.RecipientID},
	}
	profiles := map[string]*entity.User{userID: sender, input.RecipientID: recipient}
	sort.Strings(thread.ParticipantIDs)
	for _, id := range thread.ParticipantIDs {
		thread.ParticipantNames = append(thread.ParticipantNames, profiles[id].Name)
		thread.ParticipantAvatars = append(thread.ParticipantAvatars, profiles[id].AvatarURL)
	}
	if input.ItemID != "" {
		if _, err := uc.itemRepo.GetByID(ctx, input.ItemID); err != nil {
			return nil, err
		}
		thread.DiscussedItemIDs = []string{input.ItemID}
	}

	created, isNew, err := uc.threadRepo.CreateOrGet(ctx, thread, input.ItemID)
	if err != nil {
		return nil, err
	}
	if isNew {
		logger.Info("Thread %s created by %s", created.ID, userID)
	}

	return uc.toThreadResponse(created, userID), nil
}

// SendMessage appends a message to the thread's item conversation. All side
// effects on the thread document commit in the same transaction as the
// message itself.
func (uc *MessagingUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*entity.Message, error) {
	if strings.TrimSpace(input.Text) == "" && input.ImageURL == "" && input.AudioURL == "" {
		return nil, errors.EmptyMessage("A message needs text, an image or a voice recording")
	}
	if input.ItemID == "" {
		return nil, errors.BadRequest("Item id is required", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		logger.Warn("SendMessage rate limited: user %s must wait %v", userID, waitTime)
		return nil, errors.RateLimited("You are sending messages too quickly. Please slow down", waitTime)
	}

	sender, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ThreadID:   input.ThreadID,
		ItemID:     input.ItemID,
		SenderID:   userID,
		SenderName: sender.Name,
		Text:       strings.TrimSpace(input.Text),
		ImageURL:   input.ImageURL,
		AudioURL:   input.AudioURL,
	}

	thread, err := uc.threadRepo.AppendMessage(ctx, input.ThreadID, message, previewFor(message))
	if err != nil {
		uc.cleanupAttachments(input)
		return nil, err
	}

	uc.notifyThread(thread, message, userID)

	return message, nil
}

// previewFor computes the denormalized one-line thread preview.
func previewFor(m *entity.Message) string {
	switch {
	case m.AudioURL != "":
		return voiceMessagePreview
	case m.ImageURL != "" && m.Text == "":
		return photoMessagePreview
	case m.ImageURL != "":
		return photoMessagePreview + " " + m.Text
	default:
		return m.Text
	}
}

// cleanupAttachments deletes already-uploaded files of a message whose append
// failed, so rejected sends do not leak orphan objects. Failures are logged
// and otherwise ignored.
func (uc *MessagingUseCase) cleanupAttachments(input SendMessageInput) {
	if uc.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if input.ImageURL != "" {
		if err := uc.storage.DeleteFile(ctx, input.ImageURL); err != nil {
			logger.LogCleanupFailure("message image", input.ImageURL, err)
		}
	}
	if input.AudioURL != "" {
		if err := uc.storage.DeleteFile(ctx, input.AudioURL); err != nil {
			logger.LogCleanupFailure("message audio", input.AudioURL, err)
		}
	}
}

func (uc *MessagingUseCase) notifyThread(thread *entity.Thread, message *entity.Message, senderID string) {
	if uc.wsManager == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":    "new_message",
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to marshal message notification: %v", err)
		return
	}
	uc.wsManager.SendToThread(thread.ID, payload, senderID)

	update, err := json.Marshal(map[string]interface{}{
		"type":      "thread_list_update",
		"thread_id": thread.ID,
	})
	if err != nil {
		return
	}
	uc.wsManager.SendToUser(thread.OtherParticipant(senderID), update)
}

// ListThreadsForUser returns the user's visible conversation list, most
// recent first. Threads the user soft-deleted are filtered out.
func (uc *MessagingUseCase) ListThreadsForUser(ctx context.Context, userID string, limit, offset int) ([]*ThreadResponse, int64, error) {
	threads, total, err := uc.threadRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*ThreadResponse, 0, len(threads))
	for _, t := range threads {
		if t.IsDeletedFor(userID) {
			total--
			continue
		}
		responses = append(responses, uc.toThreadResponse(t, userID))
	}

	return responses, total, nil
}

// GetThreadMessages returns one item-conversation's messages for a viewer.
// Returns an empty page when the viewer deleted that item conversation.
func (uc *MessagingUseCase) GetThreadMessages(ctx context.Context, userID, threadID, itemID string, limit, offset int) ([]*entity.Message, int64, error) {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, 0, err
	}
	if !thread.IsParticipant(userID) {
		return nil, 0, errors.Forbidden("You are not part of this conversation", nil)
	}
	if thread.IsItemDeletedFor(userID, itemID) {
		return []*entity.Message{}, 0, nil
	}

	return uc.threadRepo.GetMessagesByItem(ctx, threadID, itemID, limit, offset)
}

func (uc *MessagingUseCase) MarkThreadSeen(ctx context.Context, userID, threadID string) error {
	if err := uc.requireParticipant(ctx, userID, threadID); err != nil {
		return err
	}
	return uc.threadRepo.MarkThreadSeen(ctx, threadID, userID)
}

func (uc *MessagingUseCase) MarkItemRead(ctx context.Context, userID, threadID, itemID string) error {
	if err := uc.requireParticipant(ctx, userID, threadID); err != nil {
		return err
	}
	return uc.threadRepo.MarkItemRead(ctx, threadID, itemID, userID)
}

func (uc *MessagingUseCase) MarkMessageRead(ctx context.Context, userID, threadID, messageID string) error {
	if err := uc.requireParticipant(ctx, userID, threadID); err != nil {
		return err
	}
	return uc.threadRepo.MarkMessageRead(ctx, threadID, messageID, userID)
}

// DeleteThread hides the whole thread for userID only. The other participant
// keeps full history, and any message from them makes the thread reappear.
func (uc *MessagingUseCase) DeleteThread(ctx context.Context, userID, threadID string) error {
	if err := uc.requireParticipant(ctx, userID, threadID); err != nil {
		return err
	}
	return uc.threadRepo.DeleteForUser(ctx, threadID, userID)
}

// DeleteItemConversation hides a single item's conversation for userID.
// Unlike a whole-thread delete, this is not reversed by incoming messages.
func (uc *MessagingUseCase) DeleteItemConversation(ctx context.Context, userID, threadID, itemID string) error {
	if err := uc.requireParticipant(ctx, userID, threadID); err != nil {
		return err
	}
	return uc.threadRepo.DeleteItemConversationForUser(ctx, threadID, itemID, userID)
}

// BlockThread freezes the conversation for both sides until the same user
// unblocks it.
func (uc *MessagingUseCase) BlockThread(ctx context.Context, userID, threadID string) error {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return err
	}
	if !thread.IsParticipant(userID) {
		return errors.Forbidden("You are not part of this conversation", nil)
	}
	if thread.BlockedBy != "" && thread.BlockedBy != userID {
		return errors.ConversationBlocked("This conversation is already blocked by the other user")
	}

	return uc.threadRepo.SetBlocked(ctx, threadID, userID)
}

// UnblockThread lifts a block. Only the user who placed it can lift it.
func (uc *MessagingUseCase) UnblockThread(ctx context.Context, userID, threadID string) error {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return err
	}
	if thread.BlockedBy == "" {
		return nil
	}
	if thread.BlockedBy != userID {
		return errors.Forbidden("Only the user who blocked this conversation can unblock it", nil)
	}

	return uc.threadRepo.SetBlocked(ctx, threadID, "")
}

// SubscribeThreads streams the user's visible thread list. The returned
// channel closes when ctx is cancelled.
func (uc *MessagingUseCase) SubscribeThreads(ctx context.Context, userID string) (<-chan []*ThreadResponse, error) {
	source, err := uc.threadRepo.WatchByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(chan []*ThreadResponse)
	go func() {
		defer close(out)
		for threads := range source {
			visible := make([]*ThreadResponse, 0, len(threads))
			for _, t := range threads {
				if t.IsDeletedFor(userID) {
					continue
				}
				visible = append(visible, uc.toThreadResponse(t, userID))
			}
			select {
			case out <- visible:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// SubscribeMessages streams one item-conversation's messages. A conversation
// the viewer has deleted yields a single empty update and ends.
func (uc *MessagingUseCase) SubscribeMessages(ctx context.Context, userID, threadID, itemID string) (<-chan []*entity.Message, error) {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.IsParticipant(userID) {
		return nil, errors.Forbidden("You are not part of this conversation", nil)
	}
	if thread.IsItemDeletedFor(userID, itemID) {
		out := make(chan []*entity.Message, 1)
		out <- []*entity.Message{}
		close(out)
		return out, nil
	}

	return uc.threadRepo.WatchMessagesByItem(ctx, threadID, itemID)
}

func (uc *MessagingUseCase) requireParticipant(ctx context.Context, userID, threadID string) error {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return err
	}
	if !thread.IsParticipant(userID) {
		return errors.Forbidden("You are not part of this conversation", nil)
	}
	return nil
}

func (uc *MessagingUseCase) toThreadResponse(t *entity.Thread, userID string) *ThreadResponse {
	otherID := t.OtherParticipant(userID)
	otherName := ""
	for i, id := range t.ParticipantIDs {
		if id == otherID && i < len(t.ParticipantNames) {
			otherName = t.ParticipantNames[i]
		}
	}

	hasSeen := false
	for _, id := range t.SeenLatestBy {
		if id == userID {
			hasSeen = true
			break
		}
	}

	return &ThreadResponse{
		Thread:        t,
		OtherUserID:   otherID,
		OtherUserName: otherName,
		UnreadCount:   len(t.UnreadItemsFor[userID]),
		HasSeenLatest: hasSeen,
	}
}
