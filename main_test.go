package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/blogem/toolshelf/client"
	"github.com/blogem/toolshelf/clientsession"
	"github.com/blogem/toolshelf/config"
	"github.com/blogem/toolshelf/database"
	"github.com/blogem/toolshelf/models"
)

const testSecret = "correct horse battery staple"

const validCatalog = `{
	"categories": ["Observability"],
	"apps": [{"name": "Grafana", "href": "https://grafana.example.com", "category": "Observability"}]
}`

// ServerTestSuite exercises the full router against a temp catalog
type ServerTestSuite struct {
	suite.Suite
	app    *application
	server *httptest.Server
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:          "test",
		Port:         "0",
		AdminSecret:  testSecret,
		CatalogPath:  filepath.Join(t.TempDir(), "catalog.json"),
		ReadLimit:    30,
		ReadWindow:   time.Minute,
		WriteLimit:   5,
		WriteWindow:  time.Minute,
		MaxBodyBytes: 10 << 20,
		SessionTTL:   models.SessionLifetime,
	}
}

// SetupTest builds an isolated application for each test
func (suite *ServerTestSuite) SetupTest() {
	// nil keeps the real 100-200ms invalid-credential delay
	suite.app = newApplication(testConfig(suite.T()), nil, nil)
	suite.server = httptest.NewServer(suite.app.router)
}

// TearDownTest stops the server
func (suite *ServerTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *ServerTestSuite) post(path, body, bearer, userAgent string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(http.MethodPost, suite.server.URL+path, strings.NewReader(body))
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return suite.do(req)
}

func (suite *ServerTestSuite) get(path, bearer string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(http.MethodGet, suite.server.URL+path, nil)
	suite.Require().NoError(err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return suite.do(req)
}

func (suite *ServerTestSuite) do(req *http.Request) (*http.Response, map[string]any) {
	resp, err := suite.server.Client().Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	var body map[string]any
	if len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}
	return resp, body
}

// TestMissingCredential tests that an anonymous write is rejected with 401
func (suite *ServerTestSuite) TestMissingCredential() {
	resp, body := suite.post("/api/catalog", validCatalog, "", "")

	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
	suite.Equal("unauthorized", body["error"])
	suite.Equal("missing-credential", body["reason"])
}

// TestInvalidCredentialIsDelayed tests the 403 and its minimum delay
func (suite *ServerTestSuite) TestInvalidCredentialIsDelayed() {
	start := time.Now()
	resp, body := suite.post("/api/catalog", validCatalog, "wrong", "")
	elapsed := time.Since(start)

	suite.Equal(http.StatusForbidden, resp.StatusCode)
	suite.Equal("invalid-credential", body["reason"])
	suite.GreaterOrEqual(elapsed, 100*time.Millisecond)

	failures := suite.app.audit.LogsByEventKind(models.EventAuthFailure, 0)
	suite.Require().Len(failures, 1)
	suite.NotContains(fmt.Sprint(failures[0].Details), "wrong")
}

// TestSSRFTargetIsRejected tests that a private href never reaches storage
func (suite *ServerTestSuite) TestSSRFTargetIsRejected() {
	body := `{"categories":["Net"],"apps":[{"name":"Router","href":"http://192.168.1.1/admin","category":"Net"}]}`

	resp, out := suite.post("/api/catalog", body, testSecret, "")

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal("validation failed", out["error"])
	suite.Contains(out["reason"], "SSRF")

	resp, _ = suite.get("/api/catalog", "")
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

// TestWriteRateLimit tests that the sixth write in a minute is refused
func (suite *ServerTestSuite) TestWriteRateLimit() {
	for i := 1; i <= 5; i++ {
		resp, body := suite.post("/api/catalog", validCatalog, testSecret, "")
		suite.Require().Equal(http.StatusOK, resp.StatusCode, "request %d: %v", i, body)
		suite.Equal(true, body["success"])
	}

	resp, body := suite.post("/api/catalog", validCatalog, testSecret, "")

	suite.Equal(http.StatusTooManyRequests, resp.StatusCode)
	retryAfter, ok := body["retryAfter"].(float64)
	suite.Require().True(ok)
	suite.Greater(retryAfter, 0.0)
	suite.LessOrEqual(retryAfter, 60.0)
	suite.NotEmpty(resp.Header.Get("Retry-After"))
	suite.NotEmpty(suite.app.audit.LogsByEventKind(models.EventRateLimitExceeded, 0))

	// the offending IP is now suspicious, even with a fresh client key
	resp, body = suite.post("/api/catalog", validCatalog, testSecret, "another-agent")
	suite.Equal(http.StatusForbidden, resp.StatusCode)
	suite.Equal("suspicious-ip", body["reason"])
}

// TestSaveAndRead tests the happy path end to end
func (suite *ServerTestSuite) TestSaveAndRead() {
	resp, body := suite.post("/api/catalog", validCatalog, testSecret, "")
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	suite.Equal(map[string]any{"categories": 1.0, "apps": 1.0}, body["stats"])

	resp, body = suite.get("/api/catalog", "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal([]any{"Observability"}, body["categories"])
	suite.Equal("no-store", resp.Header.Get("Cache-Control"))
	suite.Equal("30", resp.Header.Get("X-RateLimit-Limit"), "reads use the read policy")
}

// TestOversizedBody tests the request size cap
func (suite *ServerTestSuite) TestOversizedBody() {
	cfg := testConfig(suite.T())
	cfg.MaxBodyBytes = 1024
	srv := httptest.NewServer(newApplication(cfg, nil, nil).router)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/catalog",
		strings.NewReader(`{"categories":["`+strings.Repeat("a", 4096)+`"]}`))
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+testSecret)
	resp, err := srv.Client().Do(req)
	suite.Require().NoError(err)
	resp.Body.Close()

	suite.Equal(http.StatusRequestEntityTooLarge, resp.StatusCode)
}

// TestSessionLogin tests login, token use and logout through the Go client
func (suite *ServerTestSuite) TestSessionLogin() {
	ctx := context.Background()
	c := client.New(suite.server.URL, clientsession.NewMemoryKV(), suite.server.Client())

	suite.Require().NoError(c.Login(ctx, testSecret))
	suite.True(c.LoggedIn())

	var catalog models.Catalog
	suite.Require().NoError(json.Unmarshal([]byte(validCatalog), &catalog))
	outcome, err := c.SaveCatalog(ctx, &catalog)
	suite.Require().NoError(err)
	suite.True(outcome.Durable)

	record, _ := c.Sessions().Current()
	resp, _ := suite.get("/api/audit?kind=session-issued", record.Token)
	suite.Equal(http.StatusOK, resp.StatusCode)

	suite.Require().NoError(c.Logout(ctx))
	suite.False(c.LoggedIn())

	resp, body := suite.post("/api/catalog", validCatalog, record.Token, "")
	suite.Equal(http.StatusForbidden, resp.StatusCode)
	suite.Equal("invalid-credential", body["reason"])
}

// TestLoginRejectsSessionToken tests that a session token cannot mint another
func (suite *ServerTestSuite) TestLoginRejectsSessionToken() {
	token, _, err := suite.app.tokens.Issue()
	suite.Require().NoError(err)

	resp, body := suite.post("/api/login", "", token, "")

	suite.Equal(http.StatusForbidden, resp.StatusCode)
	suite.Equal("invalid-credential", body["reason"])
}

// TestAuditRequiresCredential tests that the audit trail is not public
func (suite *ServerTestSuite) TestAuditRequiresCredential() {
	resp, _ := suite.get("/api/audit", "")
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, body := suite.get("/api/audit", testSecret)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(body, "entries")
}

// TestHealth tests the public health endpoint
func (suite *ServerTestSuite) TestHealth() {
	resp, body := suite.get("/health", "")

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("healthy", body["status"])
	suite.Equal(true, body["secretConfigured"])
	suite.Equal("nosniff", resp.Header.Get("X-Content-Type-Options"))
}

// TestConcurrentWritesStayConsistent tests that parallel saves leave a parseable catalog
func (suite *ServerTestSuite) TestConcurrentWritesStayConsistent() {
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodPost, suite.server.URL+"/api/catalog", strings.NewReader(validCatalog))
			req.Header.Set("Authorization", "Bearer "+testSecret)
			req.Header.Set("User-Agent", fmt.Sprintf("writer-%d", n))
			resp, err := suite.server.Client().Do(req)
			if err == nil {
				resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()

	catalog, err := suite.app.repos.Catalog.Read(context.Background())
	suite.Require().NoError(err)
	suite.Len(catalog.Apps, 1)
}

// TestServerTestSuite runs the server test suite
func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestMisconfiguredServerRejectsWrites(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminSecret = ""
	app := newApplication(cfg, nil, func(context.Context) {})
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/catalog", strings.NewReader(validCatalog))
	req.Header.Set("Authorization", "Bearer anything")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500 for missing ADMIN_SECRET, got %d", resp.StatusCode)
	}
	if n := len(app.audit.LogsByEventKind(models.EventConfigurationError, 0)); n != 1 {
		t.Errorf("Expected 1 configuration-error event, got %d", n)
	}
}

func TestAuditEntriesReachDatabase(t *testing.T) {
	db, err := database.InitializeDatabase(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	app := newApplication(testConfig(t), db, func(context.Context) {})
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	resp, err := srv.Client().Post(srv.URL+"/api/catalog", "application/json", strings.NewReader(validCatalog))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	// auth-failure and admin-request
	assert.Eventually(t, func() bool { return app.audit.Len() == 2 }, time.Second, 10*time.Millisecond)
	app.audit.Flush()

	entries, err := app.repos.Audit.Recent(10)
	if err != nil {
		t.Fatalf("Failed to read audit entries: %v", err)
	}
	if len(entries) != app.audit.Len() {
		t.Errorf("Expected %d durable entries, got %d", app.audit.Len(), len(entries))
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/audit?source=durable&kind=auth-failure", nil)
	req.Header.Set("Authorization", "Bearer "+testSecret)
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode audit response: %v", err)
	}
	if resp.StatusCode != http.StatusOK || body.Count != 1 {
		t.Errorf("Expected 200 with 1 durable auth-failure, got %d with %d", resp.StatusCode, body.Count)
	}
}
