package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trocly/internal/domain/entity"
	"trocly/internal/infrastructure/ratelimit"
	"trocly/pkg/errors"
)

// In-memory stand-ins honoring the same contracts as the Firestore
// repositories.

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.ProfileNotFound(id, nil)
	}
	return user, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

type fakeItemRepo struct {
	items map[string]*entity.Item
	views map[string][]*entity.ItemView
}

func newFakeItemRepo(items ...*entity.Item) *fakeItemRepo {
	repo := &fakeItemRepo{
		items: make(map[string]*entity.Item),
		views: make(map[string][]*entity.ItemView),
	}
	for _, i := range items {
		repo.items[i.ID] = i
	}
	return repo
}

func (r *fakeItemRepo) Create(ctx context.Context, item *entity.Item) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	return item, nil
}

func (r *fakeItemRepo) Update(ctx context.Context, item *entity.Item) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Item, int64, error) {
	var result []*entity.Item
	for _, i := range r.items {
		result = append(result, i)
	}
	return result, int64(len(result)), nil
}

func (r *fakeItemRepo) ListBySellerID(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Item, int64, error) {
	var result []*entity.Item
	for _, i := range r.items {
		if i.SellerID == sellerID {
			result = append(result, i)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeItemRepo) ListActive(ctx context.Context, limit int) ([]*entity.Item, error) {
	var result []*entity.Item
	for _, i := range r.items {
		if !i.IsSold {
			result = append(result, i)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *fakeItemRepo) IncrementViews(ctx context.Context, id string) error {
	if item, ok := r.items[id]; ok {
		item.Views++
	}
	return nil
}

func (r *fakeItemRepo) MarkSold(ctx context.Context, id string) error {
	if item, ok := r.items[id]; ok {
		item.IsSold = true
	}
	return nil
}

func (r *fakeItemRepo) RecordView(ctx context.Context, view *entity.ItemView) error {
	r.views[view.UserID] = append([]*entity.ItemView{view}, r.views[view.UserID]...)
	return nil
}

func (r *fakeItemRepo) ListRecentViews(ctx context.Context, userID string, limit int) ([]*entity.ItemView, error) {
	views := r.views[userID]
	if len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

type fakeThreadRepo struct {
	threads  map[string]*entity.Thread
	messages map[string][]*entity.Message // threadID -> messages
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{
		threads:  make(map[string]*entity.Thread),
		messages: make(map[string][]*entity.Message),
	}
}

func (r *fakeThreadRepo) CreateOrGet(ctx context.Context, thread *entity.Thread, itemID string) (*entity.Thread, bool, error) {
	if existing, ok := r.threads[thread.ID]; ok {
		if itemID != "" && !containsStr(existing.DiscussedItemIDs, itemID) {
			existing.DiscussedItemIDs = append(existing.DiscussedItemIDs, itemID)
		}
		return existing, false, nil
	}

	thread.UnreadItemsFor = make(map[string][]string)
	thread.ItemConversationsDeletedFor = make(map[string][]string)
	thread.CreatedAt = time.Now()
	thread.UpdatedAt = time.Now()
	r.threads[thread.ID] = thread
	return thread, true, nil
}

func (r *fakeThreadRepo) GetByID(ctx context.Context, id string) (*entity.Thread, error) {
	thread, ok := r.threads[id]
	if !ok {
		return nil, errors.ThreadNotFound(id, nil)
	}
	return thread, nil
}

func (r *fakeThreadRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Thread, int64, error) {
	var result []*entity.Thread
	for _, t := range r.threads {
		if t.IsParticipant(userID) {
			result = append(result, t)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeThreadRepo) AppendMessage(ctx context.Context, threadID string, message *entity.Message, preview string) (*entity.Thread, error) {
	thread, ok := r.threads[threadID]
	if !ok {
		return nil, errors.ThreadNotFound(threadID, nil)
	}
	if thread.BlockedBy != "" {
		return nil, errors.ConversationBlocked("This conversation is blocked")
	}
	if !thread.IsParticipant(message.SenderID) {
		return nil, errors.Forbidden("You are not part of this conversation", nil)
	}

	message.ID = uuid.New().String()
	message.ThreadID = threadID
	message.ReadBy = []string{message.SenderID}
	message.Timestamp = time.Now()
	r.messages[threadID] = append(r.messages[threadID], message)

	recipient := thread.OtherParticipant(message.SenderID)

	thread.LastMessageText = preview
	thread.LastMessageSenderID = message.SenderID
	thread.LastMessageAt = message.Timestamp
	thread.ItemID = message.ItemID
	thread.SeenLatestBy = []string{message.SenderID}
	if !containsStr(thread.DiscussedItemIDs, message.ItemID) {
		thread.DiscussedItemIDs = append(thread.DiscussedItemIDs, message.ItemID)
	}
	if !containsStr(thread.UnreadItemsFor[recipient], message.ItemID) {
		thread.UnreadItemsFor[recipient] = append(thread.UnreadItemsFor[recipient], message.ItemID)
	}
	thread.DeletedFor = removeStr(thread.DeletedFor, recipient)
	thread.UpdatedAt = message.Timestamp

	return thread, nil
}

func (r *fakeThreadRepo) GetMessagesByItem(ctx context.Context, threadID, itemID string, limit, offset int) ([]*entity.Message, int64, error) {
	var result []*entity.Message
	for _, m := range r.messages[threadID] {
		if m.ItemID == itemID {
			result = append(result, m)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeThreadRepo) MarkThreadSeen(ctx context.Context, threadID, userID string) error {
	thread, ok := r.threads[threadID]
	if !ok {
		return errors.ThreadNotFound(threadID, nil)
	}
	if !containsStr(thread.SeenLatestBy, userID) {
		thread.SeenLatestBy = append(thread.SeenLatestBy, userID)
	}
	return nil
}

func (r *fakeThreadRepo) MarkItemRead(ctx context.Context, threadID, itemID, userID string) error {
	thread, ok := r.threads[threadID]
	if !ok {
		return errors.ThreadNotFound(threadID, nil)
	}
	thread.UnreadItemsFor[userID] = removeStr(thread.UnreadItemsFor[userID], itemID)
	return nil
}

func (r *fakeThreadRepo) MarkMessageRead(ctx context.Context, threadID, messageID, userID string) error {
	for _, m := range r.messages[threadID] {
		if m.ID == messageID && !containsStr(m.ReadBy, userID) {
			m.ReadBy = append(m.ReadBy, userID)
		}
	}
	return nil
}

func (r *fakeThreadRepo) DeleteForUser(ctx context.Context, threadID, userID string) error {
	thread, ok := r.threads[threadID]
	if !ok {
		return errors.ThreadNotFound(threadID, nil)
	}
	if !containsStr(thread.DeletedFor, userID) {
		thread.DeletedFor = append(thread.DeletedFor, userID)
	}
	return nil
}

func (r *fakeThreadRepo) DeleteItemConversationForUser(ctx context.Context, threadID, itemID, userID string) error {
	thread, ok := r.threads[threadID]
	if !ok {
		return errors.ThreadNotFound(threadID, nil)
	}
	if !containsStr(thread.ItemConversationsDeletedFor[userID], itemID) {
		thread.ItemConversationsDeletedFor[userID] = append(thread.ItemConversationsDeletedFor[userID], itemID)
	}
	return nil
}

func (r *fakeThreadRepo) SetBlocked(ctx context.Context, threadID, blockerID string) error {
	thread, ok := r.threads[threadID]
	if !ok {
		return errors.ThreadNotFound(threadID, nil)
	}
	thread.BlockedBy = blockerID
	return nil
}

func (r *fakeThreadRepo) WatchByUserID(ctx context.Context, userID string) (<-chan []*entity.Thread, error) {
	ch := make(chan []*entity.Thread, 1)
	threads, _, _ := r.ListByUserID(ctx, userID, 100, 0)
	ch <- threads
	close(ch)
	return ch, nil
}

func (r *fakeThreadRepo) WatchMessagesByItem(ctx context.Context, threadID, itemID string) (<-chan []*entity.Message, error) {
	ch := make(chan []*entity.Message, 1)
	messages, _, _ := r.GetMessagesByItem(ctx, threadID, itemID, 100, 0)
	ch <- messages
	close(ch)
	return ch, nil
}

func containsStr(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func removeStr(s []string, v string) []string {
	result := s[:0]
	for _, x := range s {
		if x != v {
			result = append(result, x)
		}
	}
	return result
}

func newMessagingFixture(t *testing.T) (*MessagingUseCase, *fakeThreadRepo) {
	t.Helper()

	users := newFakeUserRepo(
		&entity.User{ID: "alice", Name: "Alice"},
		&entity.User{ID: "bob", Name: "Bob"},
	)
	items := newFakeItemRepo(
		&entity.Item{ID: "item-1", SellerID: "bob", SellerName: "Bob", Title: "Bike", Category: "sports"},
		&entity.Item{ID: "item-2", SellerID: "bob", SellerName: "Bob", Title: "Lamp", Category: "home"},
	)
	threads := newFakeThreadRepo()

	uc := NewMessagingUseCase(threads, users, items, nil, nil, ratelimit.NewRateLimiter())
	return uc, threads
}

func TestThreadIDForIsOrderIndependent(t *testing.T) {
	assert.Equal(t, ThreadIDFor("alice", "bob"), ThreadIDFor("bob", "alice"))
	assert.Equal(t, "alice_bob", ThreadIDFor("bob", "alice"))
}

func TestCreateOrGetThreadIsIdempotent(t *testing.T) {
	uc, _ := newMessagingFixture(t)
	ctx := context.Background()

	first, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "bob", ItemID: "item-1"})
	require.NoError(t, err)

	// Same pair from the other side resolves the same thread.
	second, err := uc.CreateOrGetThread(ctx, "bob", CreateThreadInput{RecipientID: "alice", ItemID: "item-2"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.ElementsMatch(t, []string{"item-1", "item-2"}, second.DiscussedItemIDs)
}

func TestCreateOrGetThreadRejectsInvalidParticipants(t *testing.T) {
	uc, _ := newMessagingFixture(t)
	ctx := context.Background()

	_, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "alice"})
	assert.True(t, errors.Is(err, "INVALID_PARTICIPANTS"))

	_, err = uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: ""})
	assert.True(t, errors.Is(err, "INVALID_PARTICIPANTS"))

	_, err = uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "nobody"})
	assert.True(t, errors.Is(err, "PROFILE_NOT_FOUND"))
}

func TestSendMessageUpdatesThreadState(t *testing.T) {
	uc, threads := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "bob", ItemID: "item-1"})
	require.NoError(t, err)

	message, err := uc.SendMessage(ctx, "alice", SendMessageInput{
		ThreadID: created.ID,
		ItemID:   "item-1",
		Text:     "Is the bike still available?",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, message.ReadBy)
	assert.Equal(t, "Alice", message.SenderName)

	thread := threads.threads[created.ID]
	assert.Equal(t, "Is the bike still available?", thread.LastMessageText)
	assert.Equal(t, "alice", thread.LastMessageSenderID)
	assert.Equal(t, []string{"alice"}, thread.SeenLatestBy)
	assert.Equal(t, []string{"item-1"}, thread.UnreadItemsFor["bob"])
	assert.Empty(t, thread.UnreadItemsFor["alice"])
}

func TestSendMessageRejectsEmptyPayload(t *testing.T) {
	uc, _ := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "bob"})
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: created.ID, ItemID: "item-1", Text: "   "})
	assert.True(t, errors.Is(err, "EMPTY_MESSAGE"))
}

func TestPreviewRules(t *testing.T) {
	assert.Equal(t, voiceMessagePreview, previewFor(&entity.Message{AudioURL: "https://x/audio.m4a"}))
	assert.Equal(t, photoMessagePreview, previewFor(&entity.Message{ImageURL: "https://x/pic.jpg"}))
	assert.Equal(t, photoMessagePreview+" nice one", previewFor(&entity.Message{ImageURL: "https://x/pic.jpg", Text: "nice one"}))
	assert.Equal(t, "hello", previewFor(&entity.Message{Text: "hello"}))
}

func TestBlockedThreadRejectsBothDirections(t *testing.T) {
	uc, _ := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "bob", ItemID: "item-1"})
	require.NoError(t, err)

	require.NoError(t, uc.BlockThread(ctx, "alice", created.ID))

	_, err = uc.SendMessage(ctx, "bob", SendMessageInput{ThreadID: created.ID, ItemID: "item-1", Text: "hi"})
	assert.True(t, errors.Is(err, "CONVERSATION_BLOCKED"))

	// The blocker is frozen out too.
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: created.ID, ItemID: "item-1", Text: "hi"})
	assert.True(t, errors.Is(err, "CONVERSATION_BLOCKED"))

	// Only the blocker may unblock.
	err = uc.UnblockThread(ctx, "bob", created.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	require.NoError(t, uc.UnblockThread(ctx, "alice", created.ID))
	_, err = uc.SendMessage(ctx, "bob", SendMessageInput{ThreadID: created.ID, ItemID: "item-1", Text: "hi"})
	assert.NoError(t, err)
}

func TestDeleteThreadIsPerUserAndReversedByIncomingMessage(t *testing.T) {
	uc, _ := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "bob", ItemID: "item-1"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: created.ID, ItemID: "item-1", Text: "hello"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteThread(ctx, "alice", created.ID))

	aliceThreads, _, err := uc.ListThreadsForUser(ctx, "alice", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, aliceThreads)

	bobThreads, _, err := uc.ListThreadsForUser(ctx, "bob", 20, 0)
	require.NoError(t, err)
	assert.Len(t, bobThreads, 1)

	// Bob's reply resurfaces the thread for Alice.
	_, err = uc.SendMessage(ctx, "bob", SendMessageInput{ThreadID: created.ID, ItemID: "item-1", Text: "hey"})
	require.NoError(t, err)

	aliceThreads, _, err = uc.ListThreadsForUser(ctx, "alice", 20, 0)
	require.NoError(t, err)
	assert.Len(t, aliceThreads, 1)
}

func TestDeleteItemConversationHidesOnlyThatItem(t *testing.T) {
	uc, _ := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "bob", ItemID: "item-1"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: created.ID, ItemID: "item-1", Text: "about the bike"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: created.ID, ItemID: "item-2", Text: "about the lamp"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteItemConversation(ctx, "alice", created.ID, "item-1"))

	hidden, _, err := uc.GetThreadMessages(ctx, "alice", created.ID, "item-1", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, hidden)

	visible, _, err := uc.GetThreadMessages(ctx, "alice", created.ID, "item-2", 20, 0)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	// Bob's view of item-1 is untouched.
	bobView, _, err := uc.GetThreadMessages(ctx, "bob", created.ID, "item-1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, bobView, 1)
}

func TestMarkItemReadClearsOnlyThatItem(t *testing.T) {
	uc, threads := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "bob", ItemID: "item-1"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: created.ID, ItemID: "item-1", Text: "a"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: created.ID, ItemID: "item-2", Text: "b"})
	require.NoError(t, err)

	thread := threads.threads[created.ID]
	assert.ElementsMatch(t, []string{"item-1", "item-2"}, thread.UnreadItemsFor["bob"])

	require.NoError(t, uc.MarkItemRead(ctx, "bob", created.ID, "item-1"))
	assert.Equal(t, []string{"item-2"}, thread.UnreadItemsFor["bob"])
}

func TestMarkThreadSeenIsIdempotent(t *testing.T) {
	uc, threads := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "bob", ItemID: "item-1"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: created.ID, ItemID: "item-1", Text: "hello"})
	require.NoError(t, err)

	require.NoError(t, uc.MarkThreadSeen(ctx, "bob", created.ID))
	require.NoError(t, uc.MarkThreadSeen(ctx, "bob", created.ID))

	thread := threads.threads[created.ID]
	assert.ElementsMatch(t, []string{"alice", "bob"}, thread.SeenLatestBy)
}

func TestGetThreadMessagesRejectsOutsiders(t *testing.T) {
	uc, _ := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "bob", ItemID: "item-1"})
	require.NoError(t, err)

	_, _, err = uc.GetThreadMessages(ctx, "mallory", created.ID, "item-1", 20, 0)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestSendMessageRateLimited(t *testing.T) {
	uc, _ := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.CreateOrGetThread(ctx, "alice", CreateThreadInput{RecipientID: "bob", ItemID: "item-1"})
	require.NoError(t, err)

	var lastErr error
	for i := 0; i < 25; i++ {
		_, lastErr = uc.SendMessage(ctx, "alice", SendMessageInput{
			ThreadID: created.ID,
			ItemID:   "item-1",
			Text:     fmt.Sprintf("message %d", i),
		})
		if lastErr != nil {
			break
		}
	}

	assert.True(t, errors.Is(lastErr, "RATE_LIMITED"))
}
