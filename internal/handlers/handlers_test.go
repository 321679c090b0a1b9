package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ewaste-exchange/internal/config"
	"ewaste-exchange/internal/database"
	"ewaste-exchange/internal/heatmap"
	"ewaste-exchange/internal/middleware"
	"ewaste-exchange/internal/models"
	"ewaste-exchange/internal/pickup"
	"ewaste-exchange/internal/ratelimit"
	"ewaste-exchange/internal/scrap"
	"ewaste-exchange/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticViews struct {
	views []scrap.SellerView
	err   error
}

func (s staticViews) SellerViews(context.Context) ([]scrap.SellerView, error) {
	return s.views, s.err
}

type mockPickups struct{ mock.Mock }

func (m *mockPickups) Schedule(ctx context.Context, req pickup.ScheduleRequest) (*pickup.ScheduleResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*pickup.ScheduleResult)
	return res, args.Error(1)
}

func (m *mockPickups) Complete(ctx context.Context, id string) (*models.Pickup, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Pickup)
	return p, args.Error(1)
}

type centers []models.RecyclingCenter

func (c centers) ListRecyclingCenters(context.Context) ([]models.RecyclingCenter, error) {
	return c, nil
}

func (c centers) GetRecyclingCenter(_ context.Context, id string) (*models.RecyclingCenter, error) {
	for i := range c {
		if c[i].ID == id {
			return &c[i], nil
		}
	}
	return nil, fmt.Errorf("recycling center %s: %w", id, database.ErrNotFound)
}

type fakeStats struct{}

func (fakeStats) GetStats(context.Context) (*database.Stats, error) {
	return &database.Stats{Listings: 4, ScrapListings: 3, PickupsByStatus: map[string]int64{"scheduled": 1}}, nil
}

func (fakeStats) RecentScrapRuns(context.Context, int) ([]models.ScrapRun, error) {
	return []models.ScrapRun{{ID: 1, Trigger: models.ScrapTriggerManual, FlaggedCount: 2}}, nil
}

type fakeRunner struct {
	result *scrap.ClassifyResult
	err    error
}

func (f fakeRunner) RunNow(context.Context) (*scrap.ClassifyResult, error) { return f.result, f.err }
func (f fakeRunner) IsRunning() bool                                       { return true }

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

const testSecret = "handler-secret"

type fixture struct {
	views   staticViews
	pickups *mockPickups
	centers centers
	auth    bool
	secret  string
	limiter *ratelimit.RateLimiter
	pinger  fakePinger
}

func newFixture() *fixture {
	return &fixture{
		views:   staticViews{views: sellerFixture()},
		pickups: &mockPickups{},
		centers: centers{
			{ID: "far", Name: "Far Yard", Location: models.Coordinates{Lat: 18.70, Lng: 73.90}},
			{ID: "near", Name: "Near Yard", Location: models.Coordinates{Lat: 18.521, Lng: 73.857}},
			{ID: "mid", Name: "Mid Yard", Location: models.Coordinates{Lat: 18.55, Lng: 73.86}},
		},
		secret:  testSecret,
		limiter: ratelimit.NewRateLimiter(100, 1000, true),
	}
}

func (f *fixture) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	cfg := config.DefaultConfig()
	cfg.Metrics.Enabled = false
	cfg.Auth.Enabled = f.auth
	cfg.Auth.JWTSecret = f.secret

	return NewRouter(RouterDeps{
		Config:      cfg,
		Log:         log,
		RateLimiter: f.limiter,
		Health:      NewHealthHandler(f.pinger),
		Scrap:       NewScrapHandler(f.views, heatmap.NewReducer(nil), nil, log),
		Pickups:     NewPickupHandler(f.pickups, log),
		Recycling:   NewRecyclingHandler(f.centers),
		Admin: NewAdminHandler(fakeStats{}, fakeRunner{result: &scrap.ClassifyResult{FlaggedCount: 2}},
			f.limiter, nil, log),
	})
}

func sellerFixture() []scrap.SellerView {
	mk := func(id, city, area, colony string, lat, lng float64) scrap.SellerView {
		return scrap.SellerView{
			ListingID:       "l-" + id,
			SellerID:        id,
			Name:            "Seller " + id,
			Address:         models.Address{City: city, Area: area, Colony: colony, Coordinates: models.Coordinates{Lat: lat, Lng: lng}},
			Items:           []string{"Old TV"},
			EstimatedWeight: "5 kg",
			TotalWeightKg:   5,
			Listings:        []scrap.ListingView{{ID: "l-" + id, Title: "Old TV", EstimatedWeight: 5}},
		}
	}
	return []scrap.SellerView{
		mk("s1", "Pune", "Kothrud", "Karve Nagar", 18.50, 73.81),
		mk("s2", "Pune", "Baner", "Pan Card Club", 18.56, 73.78),
		mk("s3", "Mumbai", "Andheri", "Lokhandwala", 19.13, 72.83),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Results json.RawMessage `json:"results"`
}

func perform(t *testing.T, r http.Handler, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestListScrap(t *testing.T) {
	w, env := perform(t, newFixture().router(), http.MethodGet, "/api/listings/scrap", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var views []scrap.SellerView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	assert.Len(t, views, 3)
	assert.Equal(t, "l-s1", views[0].Listings[0].ID)
}

func TestListScrapAggregateFailure(t *testing.T) {
	f := newFixture()
	f.views = staticViews{err: fmt.Errorf("%w: list scrap listings: boom", scrap.ErrAggregate)}

	w, env := perform(t, f.router(), http.MethodGet, "/api/listings/scrap", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Success)
	assert.NotContains(t, env.Message, "boom")
}

func TestHeatmapDrillDown(t *testing.T) {
	r := newFixture().router()

	w, env := perform(t, r, http.MethodGet, "/api/listings/scrap/heatmap", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var view heatmap.View
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, heatmap.LevelCity, view.Level)
	assert.Equal(t, 10, view.Zoom)
	assert.Len(t, view.Regions, 2)

	w, env = perform(t, r, http.MethodGet, "/api/listings/scrap/heatmap?city=pune", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	view = heatmap.View{}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, heatmap.LevelArea, view.Level)
	assert.Len(t, view.Regions, 2)
	require.Len(t, view.Selected, 1)
	assert.Equal(t, "pune", view.Selected[0].Key)

	w, env = perform(t, r, http.MethodGet, "/api/listings/scrap/heatmap?city=pune&area=kothrud&colony=karve%20nagar", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	view = heatmap.View{}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, heatmap.LevelUser, view.Level)
	require.Len(t, view.Users, 1)
	assert.Equal(t, "s1", view.Users[0].SellerID)
}

func TestHeatmapRejectsBadSelections(t *testing.T) {
	r := newFixture().router()

	w, _ := perform(t, r, http.MethodGet, "/api/listings/scrap/heatmap?area=kothrud", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := perform(t, r, http.MethodGet, "/api/listings/scrap/heatmap?city=delhi", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestSearchWithoutIndex(t *testing.T) {
	w, env := perform(t, newFixture().router(), http.MethodGet, "/api/listings/scrap/search?q=tv", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, env.Success)
}

type stubSearcher struct{ got search.FilterParams }

func (s *stubSearcher) FilterSearch(params search.FilterParams) (*search.SearchResult, error) {
	s.got = params
	return &search.SearchResult{TotalHits: 1}, nil
}

func TestSearchPassesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	searcher := &stubSearcher{}
	h := NewScrapHandler(staticViews{}, heatmap.NewReducer(nil), searcher, zap.NewNop())
	r := gin.New()
	r.GET("/search", h.Search)

	w, env := perform(t, r, http.MethodGet, "/search?q=tv&city=Pune&limit=5&min_weight=2.5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "tv", searcher.got.Query)
	assert.Equal(t, "Pune", searcher.got.City)
	assert.Equal(t, int64(5), searcher.got.Limit)
	require.NotNil(t, searcher.got.MinWeight)
	assert.Equal(t, 2.5, *searcher.got.MinWeight)

	w, _ = perform(t, r, http.MethodGet, "/search?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchedulePickup(t *testing.T) {
	f := newFixture()
	req := pickup.ScheduleRequest{Area: "Kothrud", PickupDate: "2030-01-01"}
	f.pickups.On("Schedule", mock.Anything, req).Return(&pickup.ScheduleResult{
		Pickups: []models.Pickup{{ID: "p1", ListingID: "l-s1", Status: models.PickupStatusScheduled}},
		Results: []pickup.ItemResult{{ListingID: "l-s1", Outcome: pickup.OutcomeCreated, PickupID: "p1"}},
	}, nil)

	w, env := perform(t, f.router(), http.MethodPost, "/api/pickups/schedule", req, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Pickup scheduled successfully.", env.Message)

	var pickups []models.Pickup
	require.NoError(t, json.Unmarshal(env.Data, &pickups))
	require.Len(t, pickups, 1)
	assert.Equal(t, "p1", pickups[0].ID)
	assert.Contains(t, string(env.Results), `"outcome":"created"`)
	f.pickups.AssertExpectations(t)
}

func TestSchedulePickupErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"no listings", pickup.ErrNoScrapListings, http.StatusNotFound, "No scrap listings found in the specified area or colony."},
		{"invalid", fmt.Errorf("%w: area or colony is required", pickup.ErrInvalidRequest), http.StatusBadRequest, ""},
		{"already scheduled", pickup.ErrAlreadyScheduled, http.StatusConflict, ""},
		{"in progress", pickup.ErrScheduleInProgress, http.StatusConflict, ""},
		{"storage", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.pickups.On("Schedule", mock.Anything, mock.Anything).Return(nil, tc.err)

			w, env := perform(t, f.router(), http.MethodPost, "/api/pickups/schedule", pickup.ScheduleRequest{Colony: "x"}, "")
			assert.Equal(t, tc.status, w.Code)
			assert.False(t, env.Success)
			if tc.message != "" {
				assert.Equal(t, tc.message, env.Message)
			}
		})
	}
}

func TestSchedulePickupBadBody(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodPost, "/api/pickups/schedule", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.pickups.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
}

func TestSchedulePickupRequiresTokenWhenAuthEnabled(t *testing.T) {
	f := newFixture()
	f.auth = true

	w, _ := perform(t, f.router(), http.MethodPost, "/api/pickups/schedule", pickup.ScheduleRequest{Area: "a"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSchedulePickupRateLimited(t *testing.T) {
	f := newFixture()
	f.limiter = ratelimit.NewRateLimiter(1, 0, true)
	f.pickups.On("Schedule", mock.Anything, mock.Anything).Return(nil, pickup.ErrNoScrapListings)
	r := f.router()

	w, _ := perform(t, r, http.MethodPost, "/api/pickups/schedule", pickup.ScheduleRequest{Area: "a"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = perform(t, r, http.MethodPost, "/api/pickups/schedule", pickup.ScheduleRequest{Area: "a"}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCompletePickup(t *testing.T) {
	f := newFixture()
	done := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	f.pickups.On("Complete", mock.Anything, "p1").
		Return(&models.Pickup{ID: "p1", Status: models.PickupStatusCompleted, CompletedAt: &done}, nil)
	f.pickups.On("Complete", mock.Anything, "missing").Return(nil, pickup.ErrPickupNotFound)
	r := f.router()

	w, env := perform(t, r, http.MethodPatch, "/api/pickups/complete/p1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pickup marked as completed.", env.Message)
	var p models.Pickup
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, models.PickupStatusCompleted, p.Status)

	w, env = perform(t, r, http.MethodPatch, "/api/pickups/complete/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Pickup not found.", env.Message)
}

func TestRecyclingNearbyOrdersByDistance(t *testing.T) {
	r := newFixture().router()

	w, env := perform(t, r, http.MethodGet, "/api/recycling/nearby?lat=18.5204&lng=73.8567", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var nearby []NearbyCenter
	require.NoError(t, json.Unmarshal(env.Data, &nearby))
	require.Len(t, nearby, 2)
	assert.Equal(t, "near", nearby[0].ID)
	assert.Equal(t, "mid", nearby[1].ID)
	assert.Less(t, nearby[0].DistanceMeters, nearby[1].DistanceMeters)

	w, _ = perform(t, r, http.MethodGet, "/api/recycling/nearby?lat=abc&lng=1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecyclingGet(t *testing.T) {
	r := newFixture().router()

	w, _ := perform(t, r, http.MethodGet, "/api/recycling/mid", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := perform(t, r, http.MethodGet, "/api/recycling/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	f := newFixture()
	f.auth = true
	r := f.router()

	w, _ := perform(t, r, http.MethodGet, "/api/admin/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	sellerToken, err := middleware.NewAccessToken(testSecret, "u1", "seller", time.Hour)
	require.NoError(t, err)
	w, _ = perform(t, r, http.MethodGet, "/api/admin/stats", nil, sellerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := perform(t, r, http.MethodGet, "/api/admin/stats", nil, adminToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"scrapListings":3`)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := middleware.NewAccessToken(testSecret, "admin-1", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAdminRunScrapAndReindex(t *testing.T) {
	r := newFixture().router()
	token := adminToken(t)

	w, env := perform(t, r, http.MethodPost, "/api/admin/scrap/run", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"flaggedCount":2`)

	w, _ = perform(t, r, http.MethodPost, "/api/admin/search/reindex", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, env = perform(t, r, http.MethodGet, "/api/admin/ratelimit", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"enabled":true`)
}

func TestAdminRoutesRequireTokenWithAuthDisabled(t *testing.T) {
	r := newFixture().router()

	for _, path := range []string{"/api/admin/scrap/run", "/api/admin/ratelimit/reset", "/api/admin/search/reindex"} {
		w, _ := perform(t, r, http.MethodPost, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAdminRoutesNotMountedWithoutSecret(t *testing.T) {
	f := newFixture()
	f.secret = ""
	r := f.router()

	w, _ := perform(t, r, http.MethodPost, "/api/admin/scrap/run", nil, adminToken(t))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = perform(t, r, http.MethodGet, "/api/listings/scrap", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	f := newFixture()
	w, _ := perform(t, f.router(), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	f.pinger = fakePinger{err: errors.New("down")}
	w, _ = perform(t, f.router(), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
