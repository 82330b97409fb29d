package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Gated_Community/internal/model"
	"Gated_Community/internal/pkg"
	"Gated_Community/internal/repository/memory"
	"Gated_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const account = "0xAbC0000000000000000000000000000000000001"

type testServer struct {
	engine *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	store := memory.NewStore()
	registry := service.NewRegistry(store, logger)
	verifier := service.NewVerifier(store, time.Millisecond, nil, logger)
	status := service.NewStatusTracker(time.Minute, time.Minute)
	sessions := service.NewSessionService(store, pkg.NewTokenIssuer("test-secret", time.Hour), logger)

	return &testServer{
		engine: InitRouter(Services{
			Community: service.NewCommunityService(registry, verifier, status, nil, logger),
			Session:   sessions,
		}),
		store: store,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (s *testServer) connect(t *testing.T) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/session/connect", "", gin.H{"account": account})
	require.Equal(t, http.StatusOK, code, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestCommunityFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.connect(t)

	code, body := s.do(t, http.MethodPost, "/api/community/create", token, gin.H{
		"name":        "Apes",
		"description": "holders only",
		"nftContract": account,
	})
	require.Equal(t, http.StatusOK, code, body)
	created := body["community"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "Apes", created["name"])
	assert.Contains(t, created["data"], pkg.FHEPrefix)
	assert.Equal(t, string(model.TxSuccess), body["status"].(map[string]any)["state"])

	code, body = s.do(t, http.MethodGet, "/api/community/list", "", nil)
	require.Equal(t, http.StatusOK, code)
	list := body["list"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].(map[string]any)["id"])

	code, body = s.do(t, http.MethodGet, "/api/community/list?tab=yours", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["list"], 1)

	code, body = s.do(t, http.MethodGet, "/api/community/list?tab=yours", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["list"])

	code, body = s.do(t, http.MethodGet, "/api/community/"+id, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "holders only", body["community"].(map[string]any)["description"])

	code, body = s.do(t, http.MethodPost, "/api/community/"+id+"/verify", token, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, string(model.VerifySuccess), body["outcome"])
	assert.Equal(t, "FHE verification successful! Access granted.", body["status"].(map[string]any)["message"])

	code, body = s.do(t, http.MethodGet, "/api/community/stats", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["total"])

	code, body = s.do(t, http.MethodGet, "/api/community/status", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(model.TxSuccess), body["state"])
}

func TestCreateRequiresSession(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/community/create", "", gin.H{"name": "A"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "please connect wallet first", body["msg"])

	code, _ = s.do(t, http.MethodPost, "/api/community/create", "garbage", gin.H{"name": "A"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Zero(t, s.store.Len())
}

func TestCreateRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	token := s.connect(t)

	code, body := s.do(t, http.MethodPost, "/api/community/create", token, gin.H{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid params", body["msg"])

	code, body = s.do(t, http.MethodPost, "/api/community/create", token, gin.H{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Creation failed: community name required", body["msg"])
}

func TestVerifyWithoutSession(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/community/abc/verify", "", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, string(model.VerifyFailure), body["outcome"])
	assert.Equal(t, "Verification failed: no session", body["status"].(map[string]any)["message"])
}

func TestGetMissingCommunity(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/api/community/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	s.store.SetAvailable(false)
	code, _ = s.do(t, http.MethodGet, "/api/community/nope", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestListRejectsUnknownTab(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/api/community/list?tab=mine", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid tab", body["msg"])
}

func TestDisconnectInvalidatesSession(t *testing.T) {
	s := newTestServer(t)
	token := s.connect(t)

	code, _ := s.do(t, http.MethodPost, "/api/session/disconnect", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/community/create", token, gin.H{"name": "A"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestConnectRequiresAccount(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/session/connect", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
}
