package listings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/gearshare-backend/internal/media"
	pkgAuth "github.com/angelmondragon/gearshare-backend/pkg/auth"
	"github.com/angelmondragon/gearshare-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gearshare-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
)

type fakeRelay struct {
	calls int
	err   error
}

func (f *fakeRelay) Accept(_ context.Context, asset media.Asset) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.googleapis.com/uploads/" + asset.FileName, nil
}

type fixture struct {
	db    *gorm.DB
	svc   Service
	relay *fakeRelay
	alice pkgAuth.Identity
	bob   pkgAuth.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.New(t)
	relay := &fakeRelay{}
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Media: relay})
	require.NoError(t, err)
	return &fixture{
		db:    conn,
		svc:   svc,
		relay: relay,
		alice: createUser(t, conn, "alice"),
		bob:   createUser(t, conn, "bob"),
	}
}

func createUser(t *testing.T, conn *gorm.DB, username string) pkgAuth.Identity {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "hash"}
	require.NoError(t, conn.Create(user).Error)
	return pkgAuth.Identity{UserID: user.ID, Username: username}
}

func validInput() ServiceInput {
	return ServiceInput{
		Name:          "Sony A7 III",
		Description:   "Full frame mirrorless camera",
		Category:      "camera",
		PricePerDay:   "100",
		DiscountPrice: "80",
		Quantity:      "2",
		AvailableFrom: "2024-01-01",
		AvailableTo:   "2024-12-31",
	}
}

func image() *media.Asset {
	return &media.Asset{FileName: "camera.png", ContentType: "image/png", Data: []byte("png")}
}

func TestCreateReportsEveryInvalidField(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.alice, ServiceInput{
		Category:      "spaceship",
		PricePerDay:   "-5",
		Quantity:      "0",
		AvailableFrom: "2024-02-01",
		AvailableTo:   "2024-01-01",
	}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	details := pkgerrors.As(err).Details().(map[string]string)
	for _, field := range []string{"name", "description", "category", "pricePerDay", "quantity", "availableTo", "image"} {
		assert.Contains(t, details, field)
	}
	assert.Zero(t, f.relay.calls, "upload must not run when validation fails")
}

func TestCreatePersistsListing(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.Create(context.Background(), f.alice, validInput(), image())
	require.NoError(t, err)

	assert.Equal(t, f.alice.UserID, dto.OwnerID)
	assert.Equal(t, "https://storage.googleapis.com/uploads/camera.png", dto.ImageURL)
	assert.Equal(t, "100", dto.PricePerDay.String())
	require.NotNil(t, dto.DiscountPrice)
	assert.Equal(t, "80", dto.DiscountPrice.String())
	require.NotNil(t, dto.Owner)
	assert.Equal(t, "alice", dto.Owner.Username)
}

func TestCreateUploadFailurePersistsNothing(t *testing.T) {
	f := newFixture(t)
	f.relay.err = pkgerrors.New(pkgerrors.CodeUploadFailed, "bucket unavailable")

	_, err := f.svc.Create(context.Background(), f.alice, validInput(), image())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUploadFailed))

	var count int64
	require.NoError(t, f.db.Model(&models.Service{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateRequiresOwnerAndKeepsImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.alice, validInput(), image())
	require.NoError(t, err)

	in := validInput()
	in.Name = "Sony A7 IV"

	_, err = f.svc.Update(ctx, f.bob, created.ID, in, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	_, err = f.svc.Update(ctx, f.alice, uuid.New(), in, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	updated, err := f.svc.Update(ctx, f.alice, created.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sony A7 IV", updated.Name)
	assert.Equal(t, created.ImageURL, updated.ImageURL)

	in.DiscountPrice = ""
	updated, err = f.svc.Update(ctx, f.alice, created.ID, in, &media.Asset{FileName: "new.png", Data: []byte("x")})
	require.NoError(t, err)
	assert.Nil(t, updated.DiscountPrice)
	assert.Equal(t, "https://storage.googleapis.com/uploads/new.png", updated.ImageURL)
}

func TestDeleteRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.alice, validInput(), image())
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.bob, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	require.NoError(t, f.svc.Delete(ctx, f.alice, created.ID))

	err = f.svc.Delete(ctx, f.alice, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestListSearchFoldsNonASCIICase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validInput()
	in.Name = "ÉCLAIR Kamera"
	in.Description = "Objektiv für Straßenfotografie"
	created, err := f.svc.Create(ctx, f.alice, in, image())
	require.NoError(t, err)

	for _, term := range []string{"ÉCLAIR", "éclair", "Éclair", "kamera", "FÜR"} {
		got, err := f.svc.List(ctx, Filter{Search: term})
		require.NoError(t, err)
		require.Len(t, got, 1, "search %q", term)
		assert.Equal(t, created.ID, got[0].ID)
	}

	renamed := validInput()
	renamed.Name = "Ölkamera"
	_, err = f.svc.Update(ctx, f.alice, created.ID, renamed, nil)
	require.NoError(t, err)

	stale, err := f.svc.List(ctx, Filter{Search: "éclair"})
	require.NoError(t, err)
	assert.Empty(t, stale)
	fresh, err := f.svc.List(ctx, Filter{Search: "ölKAMERA"})
	require.NoError(t, err)
	assert.Len(t, fresh, 1)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	camera := validInput()
	_, err := f.svc.Create(ctx, f.alice, camera, image())
	require.NoError(t, err)

	tent := validInput()
	tent.Name = "Two person tent"
	tent.Description = "Waterproof CAMPING shelter"
	tent.Category = "camping-gear"
	_, err = f.svc.Create(ctx, f.bob, tent, image())
	require.NoError(t, err)

	all, err := f.svc.List(ctx, Filter{Category: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := f.svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, none, 2)

	byCategory, err := f.svc.List(ctx, Filter{Category: "camping-gear"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Two person tent", byCategory[0].Name)

	bySearch, err := f.svc.List(ctx, Filter{Search: "camping"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1, "search matches description case-insensitively")

	byName, err := f.svc.List(ctx, Filter{Search: "SONY"})
	require.NoError(t, err)
	require.Len(t, byName, 1)

	literal, err := f.svc.List(ctx, Filter{Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, literal)

	_, err = f.svc.List(ctx, Filter{Category: "boats"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListByOwnerScopedToCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.alice, validInput(), image())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.bob, validInput(), image())
	require.NoError(t, err)

	mine, err := f.svc.ListByOwner(ctx, f.alice, f.alice.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.alice.UserID, mine[0].OwnerID)

	_, err = f.svc.ListByOwner(ctx, f.alice, f.bob.UserID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestGetMissingService(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
