package notifications

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/avolkov/blogpulse/internal/common"
	"github.com/avolkov/blogpulse/internal/dbx"
	"github.com/avolkov/blogpulse/internal/logging"
	"github.com/avolkov/blogpulse/internal/server/models"
	blogsrepo "github.com/avolkov/blogpulse/internal/server/repositories/blogs"
	commentsrepo "github.com/avolkov/blogpulse/internal/server/repositories/comments"
	notificationsrepo "github.com/avolkov/blogpulse/internal/server/repositories/notifications"
	refreshtokensrepo "github.com/avolkov/blogpulse/internal/server/repositories/refreshtokens"
	usersrepo "github.com/avolkov/blogpulse/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeNotifRepo struct {
	rows []*models.Notification

	createErr error
	listErr   error
	markErr   error
}

func (f *fakeNotifRepo) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	n.ID = uuid.NewString()
	f.rows = append(f.rows, n)
	return n, nil
}

func (f *fakeNotifRepo) ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]*models.Notification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Notification
	for _, n := range f.rows {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotifRepo) CountByRecipient(ctx context.Context, recipientID string) (int64, error) {
	var total int64
	for _, n := range f.rows {
		if n.RecipientID == recipientID {
			total++
		}
	}
	return total, nil
}

func (f *fakeNotifRepo) MarkRead(ctx context.Context, id, recipientID string) (int64, error) {
	if f.markErr != nil {
		return 0, f.markErr
	}
	for _, n := range f.rows {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeNotifRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	var updated int64
	for _, n := range f.rows {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

type fakeUsersRepo struct {
	counters map[string]int
	resets   []string

	incrementErr error
	readBackErr  error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return u, nil
}

func (f *fakeUsersRepo) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, Username: "reader-" + id}, nil
}

func (f *fakeUsersRepo) IncrementNotificationCount(ctx context.Context, id string) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	if f.counters == nil {
		f.counters = map[string]int{}
	}
	f.counters[id]++
	return nil
}

func (f *fakeUsersRepo) ResetNotificationCount(ctx context.Context, id string) error {
	f.resets = append(f.resets, id)
	if f.counters != nil {
		f.counters[id] = 0
	}
	return nil
}

func (f *fakeUsersRepo) GetNotificationCount(ctx context.Context, id string) (int, error) {
	if f.readBackErr != nil {
		return 0, f.readBackErr
	}
	return f.counters[id], nil
}

type fakeRepoManager struct {
	n *fakeNotifRepo
	u *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error            { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                  { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository  { return nil }
func (m *fakeRepoManager) Notifications(db dbx.DBTX) notificationsrepo.Repository  { return m.n }
func (m *fakeRepoManager) Blogs(db dbx.DBTX) blogsrepo.Repository                  { return nil }
func (m *fakeRepoManager) Comments(db dbx.DBTX) commentsrepo.Repository            { return nil }

type pushRecord struct {
	userID string
	count  int
}

type recordingPublisher struct {
	pushes []pushRecord
}

func (p *recordingPublisher) Publish(userID string, notificationCount int) {
	p.pushes = append(p.pushes, pushRecord{userID: userID, count: notificationCount})
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func newTestService(rm *fakeRepoManager, pub Publisher, resolvers Resolvers) *Service {
	return NewService(nil, rm, pub, resolvers, testLogger())
}

// --- Create ---

func TestCreatePersistsIncrementsAndPushes(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{}}
	pub := &recordingPublisher{}
	svc := newTestService(rm, pub, nil)

	n, err := svc.Create(context.Background(), CreateInput{
		RecipientID: "reader-1",
		ActorID:     "actor-1",
		Type:        models.NotificationComment,
		Title:       "New comment",
		Message:     "someone commented on your blog",
		EntityType:  models.EntityBlog,
		EntityID:    "blog-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)

	require.Len(t, rm.n.rows, 1)
	assert.Equal(t, "reader-1", rm.n.rows[0].RecipientID)
	assert.Equal(t, 1, rm.u.counters["reader-1"])

	require.Len(t, pub.pushes, 1)
	assert.Equal(t, pushRecord{userID: "reader-1", count: 1}, pub.pushes[0])
}

func TestCreatePushesCounterNotEventCount(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{counters: map[string]int{"reader-1": 4}}}
	pub := &recordingPublisher{}
	svc := newTestService(rm, pub, nil)

	_, err := svc.Create(context.Background(), CreateInput{RecipientID: "reader-1", Type: models.NotificationSystem, Title: "t", Message: "m"})
	require.NoError(t, err)

	require.Len(t, pub.pushes, 1)
	assert.Equal(t, 5, pub.pushes[0].count)
}

func TestCreateCounterFailureLeavesRowBehind(t *testing.T) {
	rm := &fakeRepoManager{
		n: &fakeNotifRepo{},
		u: &fakeUsersRepo{incrementErr: errors.New("connection reset")},
	}
	pub := &recordingPublisher{}
	svc := newTestService(rm, pub, nil)

	_, err := svc.Create(context.Background(), CreateInput{RecipientID: "reader-1", Type: models.NotificationSystem, Title: "t", Message: "m"})
	require.Error(t, err)

	// The row landed before the counter write failed; nothing was pushed.
	assert.Len(t, rm.n.rows, 1)
	assert.Equal(t, 0, rm.u.counters["reader-1"])
	assert.Empty(t, pub.pushes)
}

func TestCreateReadBackFailureSkipsPushOnly(t *testing.T) {
	rm := &fakeRepoManager{
		n: &fakeNotifRepo{},
		u: &fakeUsersRepo{readBackErr: errors.New("connection reset")},
	}
	pub := &recordingPublisher{}
	svc := newTestService(rm, pub, nil)

	n, err := svc.Create(context.Background(), CreateInput{RecipientID: "reader-1", Type: models.NotificationSystem, Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, 1, rm.u.counters["reader-1"])
	assert.Empty(t, pub.pushes)
}

// --- List ---

func seedFeed(rm *fakeRepoManager, recipientID string, count int) {
	for i := 0; i < count; i++ {
		rm.n.rows = append(rm.n.rows, &models.Notification{
			ID:          uuid.NewString(),
			RecipientID: recipientID,
			Type:        models.NotificationSystem,
			Title:       "t",
			Message:     "m",
		})
	}
}

func TestListPaginatesAndResetsCounter(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{counters: map[string]int{"reader-1": 7}}}
	seedFeed(rm, "reader-1", 15)
	svc := newTestService(rm, &recordingPublisher{}, nil)

	feed, err := svc.List(context.Background(), "reader-1", 2, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, feed.Page)
	assert.Equal(t, 10, feed.Limit)
	assert.Equal(t, int64(15), feed.Total)
	assert.Len(t, feed.Notifications, 5)

	assert.Equal(t, []string{"reader-1"}, rm.u.resets)
	assert.Equal(t, 0, rm.u.counters["reader-1"])
}

func TestListResetsCounterEvenWhenFeedEmpty(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{counters: map[string]int{"reader-1": 3}}}
	svc := newTestService(rm, &recordingPublisher{}, nil)

	feed, err := svc.List(context.Background(), "reader-1", 1, 10)
	require.NoError(t, err)

	assert.Empty(t, feed.Notifications)
	assert.Equal(t, 0, rm.u.counters["reader-1"])
}

func TestListNormalizesPageAndLimit(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{}}
	svc := newTestService(rm, &recordingPublisher{}, nil)

	feed, err := svc.List(context.Background(), "reader-1", 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Page)
	assert.Equal(t, 10, feed.Limit)
}

func TestListResolvesReferencedEntities(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{}}
	rm.n.rows = append(rm.n.rows,
		&models.Notification{
			ID: uuid.NewString(), RecipientID: "reader-1",
			Type: models.NotificationComment, EntityType: models.EntityBlog, EntityID: "blog-1",
		},
		&models.Notification{
			ID: uuid.NewString(), RecipientID: "reader-1",
			Type: models.NotificationSystem,
		},
	)

	resolvers := Resolvers{
		models.EntityBlog: func(ctx context.Context, id string) (any, error) {
			return &BlogRef{ID: id, Title: "Go generics", Slug: "go-generics"}, nil
		},
	}
	svc := newTestService(rm, &recordingPublisher{}, resolvers)

	feed, err := svc.List(context.Background(), "reader-1", 1, 10)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 2)

	withEntity := feed.Notifications[0]
	require.NotNil(t, withEntity.Entity)
	assert.Equal(t, "go-generics", withEntity.Entity.(*BlogRef).Slug)

	assert.Nil(t, feed.Notifications[1].Entity)
}

func TestListToleratesResolverFailure(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{}}
	rm.n.rows = append(rm.n.rows, &models.Notification{
		ID: uuid.NewString(), RecipientID: "reader-1",
		Type: models.NotificationComment, EntityType: models.EntityBlog, EntityID: "blog-gone",
	})

	resolvers := Resolvers{
		models.EntityBlog: func(ctx context.Context, id string) (any, error) {
			return nil, common.ErrorNotFound
		},
	}
	svc := newTestService(rm, &recordingPublisher{}, resolvers)

	feed, err := svc.List(context.Background(), "reader-1", 1, 10)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 1)
	assert.Nil(t, feed.Notifications[0].Entity)
}

// --- MarkAsRead ---

func TestMarkAsReadSingle(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{counters: map[string]int{"reader-1": 2}}}
	seedFeed(rm, "reader-1", 2)
	svc := newTestService(rm, &recordingPublisher{}, nil)

	updated, err := svc.MarkAsRead(context.Background(), "reader-1", rm.n.rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)
	assert.True(t, rm.n.rows[0].IsRead)
	assert.False(t, rm.n.rows[1].IsRead)

	// The cached counter is not maintained by read flips.
	assert.Equal(t, 2, rm.u.counters["reader-1"])
}

func TestMarkAsReadRejectsMalformedID(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{}}
	svc := newTestService(rm, &recordingPublisher{}, nil)

	_, err := svc.MarkAsRead(context.Background(), "reader-1", "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestMarkAsReadForeignNotificationIsNotFound(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{}}
	seedFeed(rm, "reader-2", 1)
	svc := newTestService(rm, &recordingPublisher{}, nil)

	_, err := svc.MarkAsRead(context.Background(), "reader-1", rm.n.rows[0].ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.False(t, rm.n.rows[0].IsRead)
}

func TestMarkAsReadAll(t *testing.T) {
	rm := &fakeRepoManager{n: &fakeNotifRepo{}, u: &fakeUsersRepo{counters: map[string]int{"reader-1": 3}}}
	seedFeed(rm, "reader-1", 3)
	seedFeed(rm, "reader-2", 1)
	svc := newTestService(rm, &recordingPublisher{}, nil)

	updated, err := svc.MarkAsRead(context.Background(), "reader-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)
	for _, n := range rm.n.rows[:3] {
		assert.True(t, n.IsRead)
	}
	assert.False(t, rm.n.rows[3].IsRead)
	assert.Equal(t, 3, rm.u.counters["reader-1"])
}
