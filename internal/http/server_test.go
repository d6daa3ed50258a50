package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cantiere/internal/auth"
	"cantiere/internal/blob"
	"cantiere/internal/log"
	"cantiere/internal/services"
	"cantiere/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewSQLiteStore(filepath.Join(dir, "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := blob.NewFSStore(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	verifier := auth.NewJWTVerifier("test-secret")
	logger := log.New(log.Config{
		Component: "test",
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})

	srv := NewServer(Options{
		Addr:               ":0",
		Store:              store,
		Blobs:              blobs,
		Verifier:           verifier,
		Aggregator:         services.NewAggregator(store),
		Logger:             logger,
		RateLimitPerMinute: 1000,
		MaxUploadBytes:     1 << 20,
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
	})

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	token, err := verifier.Generate("user-1", time.Hour)
	require.NoError(t, err)
	return ts, token
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestAuthRequired(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, "GET", ts.URL+"/projects", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, "GET", ts.URL+"/projects", "not-a-jwt", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func createProject(t *testing.T, ts *httptest.Server, token string) string {
	t.Helper()
	resp := doJSON(t, "POST", ts.URL+"/projects", token, map[string]any{
		"name":               "Bathroom remodel",
		"description":        "Main bathroom",
		"expense_estimation": "12000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p struct {
		ID string `json:"id"`
	}
	decode(t, resp, &p)
	require.NotEmpty(t, p.ID)
	return p.ID
}

func createBudget(t *testing.T, ts *httptest.Server, token, projectID, name string) string {
	t.Helper()
	resp := doJSON(t, "POST", ts.URL+"/projects/"+projectID+"/budgets", token, map[string]any{
		"name":             name,
		"estimated_amount": "3000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var b struct {
		ID string `json:"id"`
	}
	decode(t, resp, &b)
	require.NotEmpty(t, b.ID)
	return b.ID
}

func TestProjectValidation(t *testing.T) {
	ts, token := newTestServer(t)

	resp := doJSON(t, "POST", ts.URL+"/projects", token, map[string]any{"name": "no description"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "Missing required fields", body["error"])
}

func TestProjectIsolationBetweenUsers(t *testing.T) {
	ts, token := newTestServer(t)
	projectID := createProject(t, ts, token)

	otherToken, err := auth.NewJWTVerifier("test-secret").Generate("user-2", time.Hour)
	require.NoError(t, err)

	resp := doJSON(t, "GET", ts.URL+"/projects/"+projectID, otherToken, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAggregateEndToEnd(t *testing.T) {
	ts, token := newTestServer(t)
	projectID := createProject(t, ts, token)
	budgetID := createBudget(t, ts, token, projectID, "Tiling")

	resp := doJSON(t, "POST", ts.URL+"/projects/"+projectID+"/budgets/"+budgetID+"/expenses", token, map[string]any{
		"name":         "Floor tiles",
		"description":  "porcelain 60x60",
		"amount":       "820.40",
		"status":       "paid",
		"expense_date": "2026-05-12",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "GET", ts.URL+"/projects/"+projectID+"/budgets-expenses", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data []struct {
			Name   string `json:"name"`
			Amount string `json:"amount"`
			Budget struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"budget"`
		} `json:"data"`
		Metadata struct {
			TotalCount  int    `json:"total_count"`
			TotalAmount string `json:"total_amount"`
			Sorting     struct {
				Column string `json:"column"`
				Order  string `json:"order"`
			} `json:"sorting"`
			Pagination struct {
				Page     int `json:"page"`
				PageSize int `json:"pageSize"`
			} `json:"pagination"`
		} `json:"metadata"`
	}
	decode(t, resp, &out)

	require.Len(t, out.Data, 1)
	assert.Equal(t, "Floor tiles", out.Data[0].Name)
	assert.Equal(t, "820.4", out.Data[0].Amount)
	assert.Equal(t, budgetID, out.Data[0].Budget.ID)
	assert.Equal(t, "Tiling", out.Data[0].Budget.Name)

	assert.Equal(t, 1, out.Metadata.TotalCount)
	assert.Equal(t, "820.4", out.Metadata.TotalAmount)
	assert.Equal(t, "expense_date", out.Metadata.Sorting.Column)
	assert.Equal(t, "desc", out.Metadata.Sorting.Order)
	assert.Equal(t, 1, out.Metadata.Pagination.Page)
	assert.Equal(t, 10, out.Metadata.Pagination.PageSize)
}

func TestAggregateRejectsBadParams(t *testing.T) {
	ts, token := newTestServer(t)
	projectID := createProject(t, ts, token)

	tests := []struct {
		query   string
		wantMsg string
	}{
		{"?pageSize=101", "Invalid page size (must be between 1 and 100)"},
		{"?page=zero", "Invalid page number"},
		{"?startDate=12-05-2026", "Invalid date format. Use ISO format (YYYY-MM-DD)"},
		{"?sortBy=file_path", "Invalid sort column"},
		{"?sortOrder=up", "Invalid sort order"},
	}
	for _, tt := range tests {
		resp := doJSON(t, "GET", ts.URL+"/projects/"+projectID+"/budgets-expenses"+tt.query, token, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, tt.query)

		var body map[string]string
		decode(t, resp, &body)
		assert.Equal(t, tt.wantMsg, body["error"], tt.query)
	}
}

func TestBudgetExpenseUpdateValidatesStatus(t *testing.T) {
	ts, token := newTestServer(t)
	projectID := createProject(t, ts, token)
	budgetID := createBudget(t, ts, token, projectID, "Demo")

	resp := doJSON(t, "PUT", ts.URL+"/projects/"+projectID+"/budgets/"+budgetID+"/expenses/whatever", token,
		map[string]any{"status": "overdue"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "Invalid status value", body["error"])
}

func TestReceiptUploadAndFetch(t *testing.T) {
	ts, token := newTestServer(t)
	projectID := createProject(t, ts, token)
	budgetID := createBudget(t, ts, token, projectID, "Electrics")

	content := []byte("fake jpeg bytes")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "receipt.jpg")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST",
		ts.URL+"/projects/"+projectID+"/budgets/"+budgetID+"/expenses/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var uploaded struct {
		Filename string `json:"filename"`
	}
	decode(t, resp, &uploaded)
	require.NotEmpty(t, uploaded.Filename)
	assert.Contains(t, uploaded.Filename, projectID+"-"+budgetID+"-")

	// Images are served without a token.
	imgResp, err := http.Get(ts.URL + "/image/" + uploaded.Filename)
	require.NoError(t, err)
	defer imgResp.Body.Close()
	require.Equal(t, http.StatusOK, imgResp.StatusCode)

	got, err := io.ReadAll(imgResp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestImageNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/image/nope.jpg")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettingsDuplicateKey(t *testing.T) {
	ts, token := newTestServer(t)

	resp := doJSON(t, "POST", ts.URL+"/settings", token, map[string]any{"key": "currency", "value": "EUR"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "POST", ts.URL+"/settings", token, map[string]any{"key": "currency", "value": "USD"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "Key already exists", body["error"])
}

func TestProjectExpenseBodyIDLifecycle(t *testing.T) {
	ts, token := newTestServer(t)
	projectID := createProject(t, ts, token)

	resp := doJSON(t, "POST", ts.URL+"/projects/"+projectID+"/expenses", token, map[string]any{
		"name":         "Skip hire",
		"amount":       "240",
		"expense_date": "2026-06-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, resp, &created)
	assert.Equal(t, "paid", created.Status)

	resp = doJSON(t, "PUT", ts.URL+"/projects/"+projectID+"/expenses", token, map[string]any{
		"expenseId": created.ID,
		"status":    "pending",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "DELETE", ts.URL+"/projects/"+projectID+"/expenses", token, map[string]any{
		"expenseId": created.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "GET", ts.URL+"/projects/"+projectID+"/expenses", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []any
	decode(t, resp, &list)
	assert.Empty(t, list)
}

func TestEmptyCollectionsSerializeAsArrays(t *testing.T) {
	ts, token := newTestServer(t)

	resp := doJSON(t, "GET", ts.URL+"/projects", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(bytes.TrimSpace(raw)))
}
