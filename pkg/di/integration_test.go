package di

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-property-listing/cache"
	"github.com/goliatone/go-property-listing/internal/storeinfra"
	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/pkg/testsupport"
	"github.com/goliatone/go-property-listing/query"
	"github.com/goliatone/go-property-listing/store"
)

// countingPropertyStore records calls that reach the store so tests can tell
// cache hits from misses.
type countingPropertyStore struct {
	store.PropertyStore

	mu    sync.Mutex
	calls map[string]int
}

func newCountingPropertyStore(base store.PropertyStore) *countingPropertyStore {
	return &countingPropertyStore{PropertyStore: base, calls: make(map[string]int)}
}

func (s *countingPropertyStore) track(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
}

func (s *countingPropertyStore) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *countingPropertyStore) Filter(ctx context.Context, f query.Filter) (query.Result, error) {
	s.track("Filter")
	return s.PropertyStore.Filter(ctx, f)
}

func (s *countingPropertyStore) FindByID(ctx context.Context, id string) (model.Property, error) {
	s.track("FindByID")
	return s.PropertyStore.FindByID(ctx, id)
}

type integration struct {
	t          *testing.T
	handler    http.Handler
	properties *countingPropertyStore
	container  *Container
}

func newIntegration(t *testing.T) *integration {
	t.Helper()

	mem := storeinfra.NewMemory()
	properties := newCountingPropertyStore(mem.Properties())

	_, client := testsupport.NewRedis(t)
	cfg := testConfig()
	cfg.Cache.Backend = cache.BackendRedis

	container := newTestContainer(t, cfg,
		WithCacheClient(client),
		WithStores(Stores{
			Properties:      properties,
			Favourites:      mem.Favourites(),
			Recommendations: mem.Recommendations(),
			Users:           mem.Users(),
		}),
	)

	return &integration{
		t:          t,
		handler:    container.Server().Handler(),
		properties: properties,
		container:  container,
	}
}

func (it *integration) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	it.t.Helper()

	var raw []byte
	if body != nil {
		var err error
		if raw, err = json.Marshal(body); err != nil {
			it.t.Fatalf("marshal body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	it.handler.ServeHTTP(rec, req)
	return rec
}

func (it *integration) signup(email string) string {
	it.t.Helper()

	rec := it.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Owner", "email": email, "password": "correct horse",
	}, "")
	if rec.Code != http.StatusCreated {
		it.t.Fatalf("signup status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		it.t.Fatal(err)
	}
	return resp.AccessToken
}

func TestIntegration_SearchIsCachedUntilAWrite(t *testing.T) {
	it := newIntegration(t)
	token := it.signup("owner@example.com")

	for _, id := range []string{"PROP1001", "PROP1002"} {
		in := testsupport.PropertyInput(id)
		if rec := it.do(http.MethodPost, "/api/properties/add-property", in, token); rec.Code != http.StatusCreated {
			t.Fatalf("create %s status = %d: %s", id, rec.Code, rec.Body)
		}
	}

	search := func(want string) int {
		t.Helper()
		rec := it.do(http.MethodGet, "/api/properties/Get-properties?cities=Panaji&page=1", nil, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("search status = %d: %s", rec.Code, rec.Body)
		}
		if got := rec.Header().Get("X-Cache"); got != want {
			t.Errorf("X-Cache = %q, want %q", got, want)
		}
		var res query.Result
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatal(err)
		}
		if res.MaxPaginatedPages != 1 {
			t.Errorf("maxPaginatedPages = %d, want 1", res.MaxPaginatedPages)
		}
		return len(res.Properties)
	}

	if n := search("MISS"); n != 2 {
		t.Errorf("search returned %d listings, want 2", n)
	}
	search("HIT")
	if n := it.properties.count("Filter"); n != 1 {
		t.Errorf("Filter calls = %d, want 1", n)
	}

	keys, err := it.container.CacheClient().Keys(context.Background(), "properties:filtered:*")
	if err != nil || len(keys) != 1 {
		t.Fatalf("cached search keys = %v, %v", keys, err)
	}

	rec := it.do(http.MethodDelete, "/api/properties/delete-property/PROP1002", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body)
	}

	if n := search("MISS"); n != 1 {
		t.Errorf("search after delete returned %d listings, want 1", n)
	}
	if n := it.properties.count("Filter"); n != 2 {
		t.Errorf("Filter calls after delete = %d, want 2", n)
	}
}

func TestIntegration_GetIsCachedUntilUpdate(t *testing.T) {
	it := newIntegration(t)
	token := it.signup("owner@example.com")

	if rec := it.do(http.MethodPost, "/api/properties/add-property", testsupport.PropertyInput("PROP1001"), token); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}

	before := it.properties.count("FindByID")
	for i := 0; i < 3; i++ {
		if rec := it.do(http.MethodGet, "/api/properties/get-property/PROP1001", nil, ""); rec.Code != http.StatusOK {
			t.Fatalf("get status = %d", rec.Code)
		}
	}
	if n := it.properties.count("FindByID") - before; n != 1 {
		t.Errorf("FindByID calls for three reads = %d, want 1", n)
	}

	rec := it.do(http.MethodPut, "/api/properties/update-property/PROP1001", map[string]any{"title": "Renovated"}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}

	rec = it.do(http.MethodGet, "/api/properties/get-property/PROP1001", nil, "")
	var got struct {
		Data model.Property `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Data.Title != "Renovated" || rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("get after update = %q (%s)", got.Data.Title, rec.Header().Get("X-Cache"))
	}
}

func TestIntegration_ConcurrentSearches(t *testing.T) {
	it := newIntegration(t)
	token := it.signup("owner@example.com")

	if rec := it.do(http.MethodPost, "/api/properties/add-property", testsupport.PropertyInput("PROP1001"), token); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}

	var wg sync.WaitGroup
	codes := make([]int, 20)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/properties/Get-properties?propertyTypes=Villa", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
			rec := httptest.NewRecorder()
			it.handler.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("request %d status = %d", i, code)
		}
	}
	if n := it.properties.count("Filter"); n < 1 || n > len(codes) {
		t.Errorf("Filter calls = %d", n)
	}
}
