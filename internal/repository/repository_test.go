package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/repository"
	"github.com/iliyamo/regional-streaming/internal/testutil"
)

func TestUserCreateAndLookup(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	email := "Asha@Example.com"
	phone := "9876543210"
	u := model.User{
		ID: uuid.NewString(), Email: &email, Phone: &phone, Name: "Asha",
		Role: model.RoleUser, Status: model.UserStatusActive,
		CreatedAt: testutil.Epoch, UpdatedAt: testutil.Epoch,
	}
	require.NoError(t, repo.Create(ctx, &u))

	got, err := repo.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByPhone(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.Nil(t, got.SubscriptionID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	dup := u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repo.Create(ctx, &dup), repository.ErrDuplicate)

	require.NoError(t, repo.SetStatus(ctx, u.ID, model.UserStatusBanned, testutil.Epoch))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusBanned, got.Status)
	assert.False(t, got.CanLogin())

	assert.ErrorIs(t, repo.SetStatus(ctx, "missing", model.UserStatusActive, testutil.Epoch), repository.ErrNotFound)
}

func TestProfileListOrderAndCount(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Owner", model.RoleUser)
	repo := repository.NewProfileRepo(db)

	names := []string{"first", "second", "third"}
	for i, n := range names {
		at := testutil.Epoch.Add(time.Duration(i) * time.Minute)
		p := model.UserProfile{
			ID: uuid.NewString(), UserID: u.ID, Name: n,
			Preferences: map[string]any{"lang": "HO"},
			CreatedAt:   at, UpdatedAt: at,
		}
		require.NoError(t, repo.Create(ctx, &p))
	}

	list, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, p := range list {
		assert.Equal(t, names[i], p.Name)
	}
	assert.Equal(t, "HO", list[0].Preferences["lang"])

	n, err := repo.CountByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, repo.Delete(ctx, list[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, list[0].ID), repository.ErrNotFound)

	p := list[1]
	p.Name = "renamed"
	p.IsKids = true
	require.NoError(t, repo.Update(ctx, &p))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.True(t, got.IsKids)
}

func TestVideoFeedOnlyShowsApproved(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, db, "Creator", model.RoleCreator)
	repo := repository.NewVideoRepo(db)

	older := testutil.CreateVideo(t, db, creator.ID, "Santali Folk Festival", true, testutil.Epoch)
	newer := testutil.CreateVideo(t, db, creator.ID, "Nagpuri Love Story", true, testutil.Epoch.Add(time.Hour))
	pending := testutil.CreateVideo(t, db, creator.ID, "Pending Upload", false, testutil.Epoch)

	feed, err := repo.ListVisible(ctx, repository.VideoFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, newer.ID, feed[0].ID, "newest first")
	assert.Equal(t, "Creator", feed[0].Creator.Name)

	require.NoError(t, repo.IncrementViews(ctx, older.ID))
	trending, err := repo.ListVisible(ctx, repository.VideoFilter{Limit: 20, Trending: true})
	require.NoError(t, err)
	assert.Equal(t, older.ID, trending[0].ID, "most viewed first")

	search, err := repo.ListVisible(ctx, repository.VideoFilter{Limit: 20, Search: "LOVE"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, newer.ID, search[0].ID)

	none, err := repo.ListVisible(ctx, repository.VideoFilter{Limit: 20, Language: "HINDI"})
	require.NoError(t, err)
	assert.Empty(t, none)

	queue, err := repo.ListPending(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, pending.ID, queue[0].ID)

	_, err = repo.GetVisible(ctx, pending.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Approve(ctx, pending.ID, testutil.Epoch.Add(2*time.Hour)))
	got, err := repo.GetVisible(ctx, pending.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, got.ApprovedAt.Equal(testutil.Epoch.Add(2*time.Hour)))

	require.NoError(t, repo.Delete(ctx, pending.ID))
	_, err = repo.GetByID(ctx, pending.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Approve(ctx, pending.ID, testutil.Epoch), repository.ErrNotFound)
}

func TestSubscriptionActiveLookup(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Viewer", model.RoleUser)
	repo := repository.NewSubscriptionRepo(db)
	now := testutil.Epoch

	expired := model.Subscription{
		ID: uuid.NewString(), UserID: u.ID, Plan: model.PlanMonthly, Price: 299, Currency: model.Currency,
		StartDate: now.AddDate(0, 0, -40), EndDate: now.AddDate(0, 0, -10), IsActive: true,
		CreatedAt: now.AddDate(0, 0, -40),
	}
	current := model.Subscription{
		ID: uuid.NewString(), UserID: u.ID, Plan: model.PlanYearly, Price: 2990, Currency: model.Currency,
		StartDate: now, EndDate: now.AddDate(0, 0, 365), IsActive: true, CreatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, &expired))
	require.NoError(t, repo.Create(ctx, &current))

	got, err := repo.FindActive(ctx, u.ID, now)
	require.NoError(t, err)
	assert.Equal(t, current.ID, got.ID)
	assert.True(t, got.EndDate.Equal(current.EndDate))

	recent, err := repo.ListRecent(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, current.ID, recent[0].ID)

	require.NoError(t, repo.Deactivate(ctx, current.ID))
	_, err = repo.FindActive(ctx, u.ID, now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWatchlistUniqueness(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, db, "Creator", model.RoleCreator)
	viewer := testutil.CreateUser(t, db, "Viewer", model.RoleUser)
	v := testutil.CreateVideo(t, db, creator.ID, "Ho Music", true, testutil.Epoch)
	repo := repository.NewWatchlistRepo(db)

	item := model.WatchlistItem{ID: uuid.NewString(), UserID: viewer.ID, VideoID: v.ID, AddedAt: testutil.Epoch}
	require.NoError(t, repo.Add(ctx, &item))

	again := model.WatchlistItem{ID: uuid.NewString(), UserID: viewer.ID, VideoID: v.ID, AddedAt: testutil.Epoch}
	assert.ErrorIs(t, repo.Add(ctx, &again), repository.ErrDuplicate)

	ok, err := repo.Exists(ctx, viewer.ID, v.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := repo.ListByUser(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ho Music", list[0].Video.Title)
	assert.Equal(t, creator.ID, list[0].Video.Creator.ID)

	require.NoError(t, repo.Remove(ctx, viewer.ID, v.ID))
	assert.ErrorIs(t, repo.Remove(ctx, viewer.ID, v.ID), repository.ErrNotFound)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewTokenRepo(db)
	now := testutil.Epoch

	require.NoError(t, repo.StoreRefresh(ctx, "user-1", "hash-1", now.Add(time.Hour), now))

	uid, err := repo.ValidateRefresh(ctx, "hash-1", now)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)

	_, err = repo.ValidateRefresh(ctx, "hash-1", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, repository.ErrNotFound, "expired")

	require.NoError(t, repo.RevokeByHash(ctx, "hash-1", now))
	_, err = repo.ValidateRefresh(ctx, "hash-1", now)
	assert.ErrorIs(t, err, repository.ErrNotFound, "revoked")
	assert.ErrorIs(t, repo.RevokeByHash(ctx, "hash-1", now), repository.ErrNotFound, "second revoke")
}

func TestUserTouchAndPaymentUsage(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Toucher", model.RoleUser)
	users := repository.NewUserRepo(db)

	later := testutil.Epoch.Add(time.Hour)
	require.NoError(t, users.Touch(ctx, u.ID, later))
	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(later))
	assert.ErrorIs(t, users.Touch(ctx, "missing", later), repository.ErrNotFound)

	subs := repository.NewSubscriptionRepo(db)
	n, err := subs.CountByPayment(ctx, "PAY_1")
	require.NoError(t, err)
	assert.Zero(t, n)

	pay := "PAY_1"
	require.NoError(t, subs.Create(ctx, &model.Subscription{
		ID: "sub-1", UserID: u.ID, Plan: model.PlanMonthly, Price: 299, Currency: model.Currency,
		StartDate: testutil.Epoch, EndDate: testutil.Epoch.AddDate(0, 0, 30), IsActive: true,
		PaymentID: &pay, CreatedAt: testutil.Epoch,
	}))
	n, err = subs.CountByPayment(ctx, "PAY_1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAnalyticsRollups(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	creator := testutil.CreateUser(t, db, "Creator", model.RoleCreator)
	viewer := testutil.CreateUser(t, db, "Viewer", model.RoleUser)
	other := testutil.CreateUser(t, db, "Other", model.RoleUser)
	v := testutil.CreateVideo(t, db, creator.ID, "Kurukh Tales", true, testutil.Epoch)
	testutil.CreateVideo(t, db, creator.ID, "Waiting", false, testutil.Epoch)

	activity := repository.NewActivityRepo(db)
	require.NoError(t, activity.RecordWatch(ctx, &model.WatchHistory{
		ID: uuid.NewString(), UserID: viewer.ID, VideoID: v.ID, WatchTime: 300, WatchedAt: testutil.Epoch,
	}))
	require.NoError(t, activity.RecordWatch(ctx, &model.WatchHistory{
		ID: uuid.NewString(), UserID: viewer.ID, VideoID: v.ID, WatchTime: 120, WatchedAt: testutil.Epoch.Add(time.Minute),
	}))
	require.NoError(t, activity.CreateReview(ctx, &model.Review{
		ID: uuid.NewString(), UserID: viewer.ID, VideoID: v.ID, Rating: 5, CreatedAt: testutil.Epoch,
	}))
	assert.ErrorIs(t, activity.CreateReview(ctx, &model.Review{
		ID: uuid.NewString(), UserID: viewer.ID, VideoID: v.ID, Rating: 4, CreatedAt: testutil.Epoch,
	}), repository.ErrDuplicate)

	subs := repository.NewSubscriptionRepo(db)
	for _, uid := range []string{viewer.ID, other.ID} {
		require.NoError(t, subs.Create(ctx, &model.Subscription{
			ID: uuid.NewString(), UserID: uid, Plan: model.PlanMonthly, Price: 299, Currency: model.Currency,
			StartDate: testutil.Epoch, EndDate: testutil.Epoch.AddDate(0, 0, 30), IsActive: true, CreatedAt: testutil.Epoch,
		}))
	}

	repo := repository.NewAnalyticsRepo(db)
	since := testutil.Epoch.AddDate(0, 0, -7)

	admin, err := repo.Admin(ctx, testutil.Epoch, since)
	require.NoError(t, err)
	assert.Equal(t, int64(3), admin.Overview.TotalUsers)
	assert.Equal(t, int64(1), admin.Overview.TotalCreators)
	assert.Equal(t, int64(1), admin.Overview.TotalVideos)
	assert.Equal(t, int64(1), admin.Overview.PendingVideos)
	assert.Equal(t, int64(598), admin.Overview.TotalRevenue)
	assert.Equal(t, int64(2), admin.Overview.ActiveSubscriptions)
	assert.Len(t, admin.RecentTransactions, 2)

	cr, err := repo.Creator(ctx, creator.ID, since)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cr.Overview.VideosCount)
	assert.Equal(t, int64(420), cr.Overview.TotalWatchTime)
	assert.Equal(t, int64(299), cr.Overview.Revenue, "only the viewer watched the creator")
	require.Len(t, cr.TopVideos, 1)
	assert.Equal(t, int64(1), cr.TopVideos[0].Likes)

	us, err := repo.User(ctx, viewer.ID, since)
	require.NoError(t, err)
	assert.Equal(t, int64(2), us.Overview.TotalWatched)
	assert.Equal(t, int64(420), us.Overview.TotalWatchTime)
	assert.Equal(t, int64(1), us.Overview.ContentLiked)
	require.Len(t, us.RecentActivity, 2)
	assert.Equal(t, 10, us.RecentActivity[0].Duration)
}
