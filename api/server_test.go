package api_test

import (
	"bengaliboutique_server/api"
	"bengaliboutique_server/config"
	"bengaliboutique_server/lib"
	"bengaliboutique_server/services"
	"bengaliboutique_server/storetest"
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	cfg    *structs.Config
	store  *storetest.Store
	carts  *storetest.Carts
	outbox *storetest.Outbox
	auth   *services.AuthService

	srv    *httptest.Server
	base   *url.URL
	client *http.Client

	women           *tables.Category
	saree, kurta    *tables.Product
	soldOut         *tables.Product
	red, blue       *tables.ProductVariant
	userID, adminID uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.Auth.AccessTokenSecret = "test-secret"
	cfg.Email.AdminEmail = "admin@bengaliboutique.com"
	cfg.Encryption.Key = ""
	cfg.RateLimit.Enabled = false
	cfg.Shop.ShippingFee = decimal.NewFromInt(100)

	logger := config.NewLogger(false)

	ts := &testServer{
		cfg:     cfg,
		store:   storetest.New(),
		carts:   storetest.NewCarts(),
		outbox:  storetest.NewOutbox(),
		auth:    services.NewAuthService(cfg, logger),
		userID:  uuid.New(),
		adminID: uuid.New(),
	}

	ts.women = ts.store.AddCategory("Women", "women")
	men := ts.store.AddCategory("Men", "men")
	ts.saree = ts.store.AddProduct(tables.Product{
		Name:       "Silk Saree",
		Slug:       "silk-saree",
		Price:      decimal.NewFromInt(1500),
		Stock:      10,
		CategoryID: ts.women.ID,
		Size:       "M",
	})
	ts.kurta = ts.store.AddProduct(tables.Product{
		Name:       "Cotton Kurta",
		Slug:       "cotton-kurta",
		Price:      decimal.NewFromInt(800),
		Stock:      15,
		CategoryID: men.ID,
		Size:       "L",
	})
	ts.soldOut = ts.store.AddProduct(tables.Product{
		Name:       "Jamdani Dupatta",
		Slug:       "jamdani-dupatta",
		Price:      decimal.NewFromInt(600),
		CategoryID: ts.women.ID,
	})
	ts.red = ts.store.AddVariant(tables.ProductVariant{ProductID: ts.saree.ID, Size: "M", Color: "Red", Stock: 5})
	ts.blue = ts.store.AddVariant(tables.ProductVariant{
		ProductID: ts.saree.ID,
		Size:      "L",
		Color:     "Blue",
		Stock:     3,
		Price:     decimal.NewNullDecimal(decimal.NewFromInt(1600)),
	})

	cache := storetest.NewProductCache()
	sm := &services.ServiceManager{
		AuthService:     ts.auth,
		HealthService:   services.NewHealthService(logger, pinger{}, nil),
		CartService:     services.NewCartService(logger, ts.carts, ts.store),
		CatalogService:  services.NewCatalogService(logger, cfg.Shop, ts.store, ts.store, cache),
		CheckoutService: services.NewCheckoutService(logger, cfg, ts.carts, ts.store, ts.outbox, &storetest.Events{}, storetest.NewIdempotency(), cache),
		OrderService:    services.NewOrderService(logger, cfg, ts.store),
		ReviewService:   services.NewReviewService(logger, ts.store, ts.store),
		WishlistService: services.NewWishlistService(logger, ts.store, ts.store),
	}

	ts.srv = httptest.NewServer(api.App(cfg, sm))
	t.Cleanup(ts.srv.Close)

	base, err := url.Parse(ts.srv.URL)
	require.NoError(t, err)
	ts.base = base

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	ts.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return ts
}

// login stores an access token cookie for the given identity.
func (ts *testServer) login(t *testing.T, userID uuid.UUID, username, role string) {
	t.Helper()
	token, err := ts.auth.GenerateAccessToken(userID, username, username+"@example.com", role)
	require.NoError(t, err)
	ts.client.Jar.SetCookies(ts.base, []*http.Cookie{{Name: lib.AccessCookieName, Value: token, Path: "/"}})
}

func (ts *testServer) loginUser(t *testing.T) {
	ts.login(t, ts.userID, "alice", structs.RoleUser)
}

func (ts *testServer) loginAdmin(t *testing.T) {
	ts.login(t, ts.adminID, "admin", structs.RoleAdmin)
}

func (ts *testServer) cookie(name string) string {
	for _, c := range ts.client.Jar.Cookies(ts.base) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// csrfToken returns the double-submit token, fetching one with a safe request if needed.
func (ts *testServer) csrfToken(t *testing.T) string {
	t.Helper()
	if token := ts.cookie(lib.CSRFCookieName); token != "" {
		return token
	}
	resp := ts.get(t, "/cart")
	resp.Body.Close()
	token := ts.cookie(lib.CSRFCookieName)
	require.NotEmpty(t, token)
	return token
}

func (ts *testServer) sessionID(t *testing.T) string {
	t.Helper()
	ts.csrfToken(t)
	id := ts.cookie(ts.cfg.Shop.SessionCookie)
	require.NotEmpty(t, id)
	return id
}

func (ts *testServer) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := ts.client.Do(req)
	require.NoError(t, err)
	return resp
}

func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+path, nil)
	require.NoError(t, err)
	return ts.do(t, req)
}

func (ts *testServer) getAJAX(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return ts.do(t, req)
}

// postForm submits a browser form, carrying the CSRF token as a form field.
func (ts *testServer) postForm(t *testing.T, path string, values url.Values) *http.Response {
	t.Helper()
	if values == nil {
		values = url.Values{}
	}
	values.Set("csrf_token", ts.csrfToken(t))
	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+path, strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(t, req)
}

// postAJAX posts like the storefront scripts do: XHR header plus the CSRF header.
func (ts *testServer) postAJAX(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-CSRF-Token", ts.csrfToken(t))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

// field decodes the body and returns the first value stored under key at any depth.
func field(t *testing.T, resp *http.Response, key string) any {
	t.Helper()
	defer resp.Body.Close()
	var body any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	val, ok := find(body, key)
	require.True(t, ok, "no %q in response", key)
	return val
}

func find(node any, key string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		if val, ok := n[key]; ok {
			return val, true
		}
		for _, child := range n {
			if val, ok := find(child, key); ok {
				return val, true
			}
		}
	case []any:
		for _, child := range n {
			if val, ok := find(child, key); ok {
				return val, true
			}
		}
	}
	return nil, false
}
