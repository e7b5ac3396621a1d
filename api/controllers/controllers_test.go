package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gearshare-backend/api/middleware"
	"github.com/angelmondragon/gearshare-backend/internal/auth"
	"github.com/angelmondragon/gearshare-backend/internal/bookings"
	"github.com/angelmondragon/gearshare-backend/internal/listings"
	"github.com/angelmondragon/gearshare-backend/internal/media"
	"github.com/angelmondragon/gearshare-backend/internal/users"
	pkgAuth "github.com/angelmondragon/gearshare-backend/pkg/auth"
	"github.com/angelmondragon/gearshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
)

type fakeAuth struct {
	registered auth.RegisterRequest
	loggedOut  string
	loginErr   error
}

func (f *fakeAuth) Register(_ context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	f.registered = req
	return &auth.RegisterResponse{ID: uuid.New(), Username: req.Username}, nil
}

func (f *fakeAuth) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &auth.LoginResponse{Message: "login successful", ID: uuid.New(), Username: req.Username, AccessToken: "tok"}, nil
}

func (f *fakeAuth) Logout(_ context.Context, accessID string) error {
	f.loggedOut = accessID
	return nil
}

func (f *fakeAuth) Me(_ context.Context, identity pkgAuth.Identity) (*users.UserDTO, error) {
	return &users.UserDTO{ID: identity.UserID, Username: identity.Username}, nil
}

type fakeListings struct {
	listings.Service
	input  listings.ServiceInput
	image  *media.Asset
	filter listings.Filter
	owner  uuid.UUID
}

func (f *fakeListings) Create(_ context.Context, owner pkgAuth.Identity, in listings.ServiceInput, image *media.Asset) (*listings.ServiceDTO, error) {
	f.input, f.image = in, image
	return &listings.ServiceDTO{ID: uuid.New(), OwnerID: owner.UserID, Name: in.Name}, nil
}

func (f *fakeListings) List(_ context.Context, filter listings.Filter) ([]listings.ServiceDTO, error) {
	f.filter = filter
	return []listings.ServiceDTO{}, nil
}

func (f *fakeListings) ListByOwner(_ context.Context, _ pkgAuth.Identity, ownerID uuid.UUID) ([]listings.ServiceDTO, error) {
	f.owner = ownerID
	return nil, nil
}

type fakeBookings struct {
	bookings.Service
	approved uuid.UUID
	created  bookings.CreateInput
}

func (f *fakeBookings) Create(_ context.Context, renter pkgAuth.Identity, in bookings.CreateInput) (*bookings.BookingDTO, error) {
	f.created = in
	return &bookings.BookingDTO{ID: uuid.New(), RenterID: renter.UserID, Status: enums.BookingStatusPending}, nil
}

func (f *fakeBookings) Approve(_ context.Context, _ pkgAuth.Identity, id uuid.UUID) (*bookings.BookingDTO, error) {
	f.approved = id
	return &bookings.BookingDTO{ID: id, Status: enums.BookingStatusConfirmed}, nil
}

func (f *fakeBookings) Reject(context.Context, pkgAuth.Identity, uuid.UUID) (*bookings.BookingDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move booking from rejected to rejected")
}

var caller = pkgAuth.Identity{UserID: uuid.New(), Username: "owner"}

func withCaller(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), caller))
}

func route(method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestAuthRegisterReturnsCreated(t *testing.T) {
	svc := &fakeAuth{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/register", strings.NewReader(`{"username":"alice","password":"secret1"}`))
	rec := httptest.NewRecorder()
	AuthRegister(svc, nil)(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "alice", svc.registered.Username)
	var body auth.RegisterResponse
	decodeData(t, rec, &body)
	assert.Equal(t, "alice", body.Username)
}

func TestAuthRegisterValidatesBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/register", strings.NewReader(`{"username":"al","password":"x"}`))
	rec := httptest.NewRecorder()
	AuthRegister(&fakeAuth{}, nil)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), errorCode(t, rec))
}

func TestAuthLoginSetsTokenHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", strings.NewReader(`{"username":"alice","password":"secret1"}`))
	rec := httptest.NewRecorder()
	AuthLogin(&fakeAuth{}, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", rec.Header().Get(middleware.AccessTokenHeader))
	var body auth.LoginResponse
	decodeData(t, rec, &body)
	assert.Equal(t, "tok", body.AccessToken)
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &fakeAuth{loginErr: pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid password")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", strings.NewReader(`{"username":"alice","password":"nope"}`))
	rec := httptest.NewRecorder()
	AuthLogin(svc, nil)(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMeRequiresIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthMe(&fakeAuth{}, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	AuthMe(&fakeAuth{}, nil)(rec, withCaller(httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	var me users.UserDTO
	decodeData(t, rec, &me)
	assert.Equal(t, caller.UserID, me.ID)
}

func TestServiceCreatePassesFormAndImage(t *testing.T) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("name", "Tripod"))
	require.NoError(t, mw.WriteField("pricePerDay", "12.50"))
	require.NoError(t, mw.WriteField("category", "camera"))
	fw, err := mw.CreateFormFile("file", "tripod.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/services", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	svc := &fakeListings{}
	rec := httptest.NewRecorder()
	ServiceCreate(svc, 1_000_000, nil)(rec, withCaller(req))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Tripod", svc.input.Name)
	assert.Equal(t, "12.50", svc.input.PricePerDay)
	assert.Equal(t, "camera", svc.input.Category)
	require.NotNil(t, svc.image)
	assert.Equal(t, "tripod.jpg", svc.image.FileName)
	assert.Equal(t, []byte("jpeg"), svc.image.Data)
}

func TestServiceListReadsFilter(t *testing.T) {
	svc := &fakeListings{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/services?category=audio&search=mic", nil)
	rec := httptest.NewRecorder()
	ServiceList(svc, nil)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, listings.Filter{Category: "audio", Search: "mic"}, svc.filter)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestServicesByOwnerParsesPath(t *testing.T) {
	svc := &fakeListings{}
	req := withCaller(httptest.NewRequest(http.MethodGet, "/services/owner/"+caller.UserID.String(), nil))
	rec := route(http.MethodGet, "/services/owner/{userId}", ServicesByOwner(svc, nil), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, caller.UserID, svc.owner)
}

func TestBookingCreateDecodesBody(t *testing.T) {
	svc := &fakeBookings{}
	body := `{"serviceId":"` + uuid.NewString() + `","userName":"Ann","phoneNumber":"555","rentalDate":"2024-01-01","returnDate":"2024-01-03","quantity":2}`
	req := withCaller(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	BookingCreate(svc, nil)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, bookings.NumericText("2"), svc.created.Quantity)
	assert.Equal(t, "2024-01-03", svc.created.ReturnDate)
}

func TestBookingCreateAcceptsFormStringQuantity(t *testing.T) {
	svc := &fakeBookings{}
	body := `{"serviceId":"` + uuid.NewString() + `","userName":"Ann","phoneNumber":"555","rentalDate":"2024-01-01","returnDate":"2024-01-03","quantity":"2"}`
	req := withCaller(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	BookingCreate(svc, nil)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, bookings.NumericText("2"), svc.created.Quantity)
}

func TestBookingApproveAndRejectMapping(t *testing.T) {
	svc := &fakeBookings{}
	id := uuid.New()

	req := withCaller(httptest.NewRequest(http.MethodPut, "/bookings/"+id.String()+"/approve", nil))
	rec := route(http.MethodPut, "/bookings/{id}/approve", BookingApprove(svc, nil), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.approved)

	req = withCaller(httptest.NewRequest(http.MethodPut, "/bookings/"+id.String()+"/reject", nil))
	rec = route(http.MethodPut, "/bookings/{id}/reject", BookingReject(svc, nil), req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), errorCode(t, rec))

	req = withCaller(httptest.NewRequest(http.MethodPut, "/bookings/not-a-uuid/approve", nil))
	rec = route(http.MethodPut, "/bookings/{id}/approve", BookingApprove(svc, nil), req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNilServiceIsInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	BookingApprove(nil, nil)(rec, withCaller(httptest.NewRequest(http.MethodPut, "/", nil)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthReadyReportsFailingDependencies(t *testing.T) {
	ok := ReadinessCheck{Name: "db", Ping: func(context.Context) error { return nil }}
	bad := ReadinessCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	rec := httptest.NewRecorder()
	HealthReady("test", nil, ok)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthReady("test", nil, ok, bad)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"connection refused"`)
	assert.NotContains(t, rec.Body.String(), `"db"`)
}
