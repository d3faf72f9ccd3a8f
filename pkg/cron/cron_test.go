package cron

import (
	"testing"
	"time"

	"diyari_backend/internal/model"
	"diyari_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpireFeaturedListings(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	expired := testutil.CreateProperty(t, db, owner, func(p *model.Property) {
		p.IsFeatured = true
		p.FeaturedUntil = &past
	})
	running := testutil.CreateProperty(t, db, owner, func(p *model.Property) {
		p.IsFeatured = true
		p.FeaturedUntil = &future
	})
	open := testutil.CreateProperty(t, db, owner, func(p *model.Property) {
		p.IsFeatured = true
	})

	n, err := ExpireFeaturedListings(db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var got model.Property
	require.NoError(t, db.First(&got, expired.ID).Error)
	assert.False(t, got.IsFeatured)
	assert.Nil(t, got.FeaturedUntil)

	require.NoError(t, db.First(&got, running.ID).Error)
	assert.True(t, got.IsFeatured)

	require.NoError(t, db.First(&got, open.ID).Error)
	assert.True(t, got.IsFeatured)
}

func TestPurgeReadNotifications(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "reader")
	follower := testutil.CreateUser(t, db, "follower")

	old := time.Now().AddDate(0, 0, -120)
	mk := func(read bool, created time.Time) *model.Notification {
		n := model.NewNotification(user.ID, "t", "c", model.NewFollower{FollowerID: follower.ID})
		n.IsRead = read
		n.CreatedAt = created
		require.NoError(t, db.Create(n).Error)
		return n
	}

	oldRead := mk(true, old)
	oldUnread := mk(false, old)
	recentRead := mk(true, time.Now())

	n, err := PurgeReadNotifications(db, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var ids []uint
	require.NoError(t, db.Model(&model.Notification{}).Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []uint{oldUnread.ID, recentRead.ID}, ids)
	assert.NotContains(t, ids, oldRead.ID)
}

func TestCollectListingStats(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	fan := testutil.CreateUser(t, db, "fan")
	testutil.CreateUser(t, db, "nolistings")

	top := testutil.CreateProperty(t, db, owner, func(p *model.Property) {
		p.Title = "فيلا"
		p.ViewsCount = 40
	})
	testutil.CreateProperty(t, db, owner, func(p *model.Property) {
		p.ViewsCount = 2
	})
	testutil.CreateProperty(t, db, fan, func(p *model.Property) {
		p.Status = model.PropertyStatusSold
	})

	require.NoError(t, db.Create(&model.Like{UserID: fan.ID, PropertyID: top.ID}).Error)
	require.NoError(t, db.Create(&model.Comment{UserID: fan.ID, PropertyID: top.ID, Content: "nice"}).Error)
	require.NoError(t, db.Create(&model.Message{
		SenderID:    fan.ID,
		ReceiverID:  owner.ID,
		PropertyID:  &top.ID,
		Content:     "hi",
		MessageType: model.MessageTypePropertyInquiry,
	}).Error)

	stats, err := CollectListingStats(db, time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, owner.ID, s.UserID)
	assert.Equal(t, int64(2), s.ActiveListings)
	assert.Equal(t, int64(42), s.TotalViews)
	assert.Equal(t, int64(1), s.NewLikes)
	assert.Equal(t, int64(1), s.NewComments)
	assert.Equal(t, int64(1), s.NewInquiries)
	assert.Equal(t, "فيلا", s.TopProperty)
	assert.Equal(t, int64(40), s.TopViews)
	assert.Equal(t, "owner test", s.name())
}

func TestStartRegistersJobs(t *testing.T) {
	db := testutil.NewDB(t)

	c, err := Start(db)
	require.NoError(t, err)
	defer c.Stop()

	assert.Len(t, c.Entries(), 3)
}
