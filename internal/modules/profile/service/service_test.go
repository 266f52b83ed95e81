package profile

import (
	"context"
	"strings"
	"testing"

	"anoa.com/indieplatform/internal/entity"
	notifRepo "anoa.com/indieplatform/internal/modules/notification/repository"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"
	profileDto "anoa.com/indieplatform/internal/modules/profile/dto"
	profileRepo "anoa.com/indieplatform/internal/modules/profile/repository"
	userRepo "anoa.com/indieplatform/internal/modules/user/repository"
	"anoa.com/indieplatform/internal/testutil"
	"anoa.com/indieplatform/pkg/apperror"
	commonDto "anoa.com/indieplatform/pkg/dto"
	"anoa.com/indieplatform/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, ProfileService) {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)
	notifications := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	return db, NewProfileService(userRepo.NewUserRepository(db), profileRepo.NewProfileRepository(db), store, notifications)
}

func TestToggleFollow(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db)
	bob := testutil.CreateUser(t, db)

	res, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "added", res.Action)
	assert.True(t, res.IsFollowing)
	assert.Equal(t, int64(1), res.Count)

	var n entity.Notification
	require.NoError(t, db.Where("recipient_id = ?", bob.ID).First(&n).Error)
	assert.Equal(t, entity.NotificationFollow, n.Type)
	assert.Equal(t, "/profiles/"+alice.Username, n.ActionURL)

	res, err = svc.ToggleFollowByUsername(ctx, alice.ID, bob.Username)
	require.NoError(t, err)
	assert.Equal(t, "removed", res.Action)
	assert.False(t, res.IsFollowing)
	assert.Zero(t, res.Count)

	t.Run("self follow is rejected without a row", func(t *testing.T) {
		_, err := svc.ToggleFollow(ctx, alice.ID, alice.ID)
		assert.ErrorIs(t, err, apperror.ErrInvalidOperation)

		var rows int64
		require.NoError(t, db.Model(&entity.Follow{}).Where("follower_id = ?", alice.ID).Count(&rows).Error)
		assert.Zero(t, rows)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.ToggleFollowByUsername(ctx, alice.ID, "nobody-here")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestGetProfile(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	dev := testutil.CreateUser(t, db, testutil.Developer())
	fan := testutil.CreateUser(t, db)
	hidden := testutil.CreateUser(t, db, testutil.Private())

	for i := 0; i < 8; i++ {
		testutil.CreateGame(t, db, dev, testutil.Published())
	}
	testutil.CreateGame(t, db, dev)

	_, err := svc.ToggleFollow(ctx, fan.ID, dev.ID)
	require.NoError(t, err)

	res, err := svc.GetProfileByUsername(ctx, &fan.ID, dev.Username)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.FollowersCount)
	assert.True(t, res.IsFollowing)
	assert.False(t, res.IsOwner)
	assert.Len(t, res.Games, 6)
	for _, g := range res.Games {
		assert.True(t, g.IsPublished)
	}

	anon, err := svc.GetProfileByUsername(ctx, nil, dev.Username)
	require.NoError(t, err)
	assert.False(t, anon.IsFollowing)

	t.Run("private profile", func(t *testing.T) {
		_, err := svc.GetProfileByUsername(ctx, &fan.ID, hidden.Username)
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		own, err := svc.GetProfileByUsername(ctx, &hidden.ID, hidden.Username)
		require.NoError(t, err)
		assert.True(t, own.IsOwner)
	})

	me, err := svc.GetCurrentProfile(ctx, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), me.FollowingCount)
	assert.Empty(t, me.Games)
}

func TestUpdateProfile(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db)

	bio := "  making tiny games  "
	twitter := "@tinygames"
	private := false
	dob := "1990-04-01"

	updated, err := svc.UpdateProfile(ctx, user.ID, profileDto.UpdateProfileInput{
		Bio:           &bio,
		Twitter:       &twitter,
		PublicProfile: &private,
		DateOfBirth:   &dob,
	}, &commonDto.UploadFile{Reader: strings.NewReader("png"), FileName: "me.png"})
	require.NoError(t, err)

	assert.Equal(t, "making tiny games", updated.Bio)
	assert.Equal(t, "tinygames", updated.Twitter)
	assert.False(t, updated.PublicProfile)
	require.NotNil(t, updated.DateOfBirth)
	assert.Equal(t, 1990, updated.DateOfBirth.Year())
	require.NotNil(t, updated.AvatarURL)
	assert.True(t, strings.HasPrefix(*updated.AvatarURL, "/media/avatars/"))

	var stored entity.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.False(t, stored.PublicProfile)
	assert.Equal(t, *updated.AvatarURL, *stored.AvatarURL)
}

func TestDeveloperProfile(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	dev := testutil.CreateUser(t, db, testutil.Developer())
	player := testutil.CreateUser(t, db)

	_, err := svc.EnsureDeveloperProfile(ctx, player.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.GetDeveloper(ctx, nil, player.Username)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// no profile row yet
	_, err = svc.GetDeveloper(ctx, nil, dev.Username)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	p, err := svc.EnsureDeveloperProfile(ctx, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, dev.Username, p.DisplayName)

	name := "Pixel Forge"
	request := true
	p, err = svc.UpdateDeveloperProfile(ctx, dev.ID, profileDto.UpdateDeveloperProfileInput{DisplayName: &name, RequestVerification: &request})
	require.NoError(t, err)
	assert.Equal(t, name, p.DisplayName)
	assert.True(t, p.VerificationRequested)
	assert.False(t, p.Verified)

	g1 := testutil.CreateGame(t, db, dev, testutil.Published())
	g2 := testutil.CreateGame(t, db, dev, testutil.Published())
	draft := testutil.CreateGame(t, db, dev)
	require.NoError(t, db.Model(g1).Update("download_count", 5).Error)
	require.NoError(t, db.Model(g2).Update("download_count", 7).Error)
	require.NoError(t, db.Model(draft).Update("download_count", 100).Error)

	res, err := svc.GetDeveloper(ctx, nil, dev.Username)
	require.NoError(t, err)
	assert.Equal(t, name, res.Profile.DisplayName)
	assert.Len(t, res.Games, 2)
	assert.Equal(t, int64(12), res.TotalDownloads)

	list, err := svc.ListDevelopers(ctx, profileDto.DeveloperQuery{Q: strings.ToUpper(dev.Username[:4])})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, dev.ID, list.Data[0].ID)
	assert.Equal(t, 12, list.Meta.Limit)
}

func TestSearchUsers(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	visible := testutil.CreateUser(t, db, func(u *entity.User) { u.Username = "lunaworks" })
	testutil.CreateUser(t, db, testutil.Private(), func(u *entity.User) { u.Username = "lunahidden" })

	users, err := svc.SearchUsers(ctx, "LUNA")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, visible.ID, users[0].ID)

	users, err = svc.SearchUsers(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, users)
}
