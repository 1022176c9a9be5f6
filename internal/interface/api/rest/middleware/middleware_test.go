package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"palmr-api/internal/infrastructure/jwt"
	"palmr-api/internal/infrastructure/metrics"
)

const secret = "test-secret"

func signForeign(t *testing.T, key string) string {
	t.Helper()
	claims := jwt.Claims{
		UserID: uuid.NewString(),
		Role:   "admin",
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "palmr",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j := jwt.New(secret)
	userID := uuid.New()

	valid, err := j.GenerateJWT(userID.String(), "user", time.Hour)
	require.NoError(t, err)
	notUUID, err := j.GenerateJWT("42", "user", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Token abc", wantStatus: http.StatusUnauthorized},
		{name: "foreign signature", header: "Bearer " + signForeign(t, "other"), wantStatus: http.StatusUnauthorized},
		{name: "subject is not a uuid", header: "Bearer " + notUUID, wantStatus: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", AuthMiddleware(j), func(c *gin.Context) {
				id, ok := UserUUID(c)
				require.True(t, ok)
				assert.Equal(t, userID, id)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j := jwt.New(secret)

	for _, tc := range []struct {
		role string
		want int
	}{
		{role: "admin", want: http.StatusNoContent},
		{role: "user", want: http.StatusForbidden},
	} {
		t.Run(tc.role, func(t *testing.T) {
			tok, err := j.GenerateJWT(uuid.NewString(), tc.role, time.Hour)
			require.NoError(t, err)

			r := gin.New()
			r.POST("/invites", AuthMiddleware(j), RequireAdmin(), func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodPost, "/invites", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestUserUUID_NotAuthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := UserUUID(c)
	assert.False(t, ok)
}

func TestMaskSecrets(t *testing.T) {
	in := `{"login":"alice","password":"s3cr\"et","confirm":"x"}`
	assert.Equal(t, `{"login":"alice","password":"***","confirm":"x"}`, MaskSecrets(in))
	assert.Equal(t, `{"login":"alice"}`, MaskSecrets(`{"login":"alice"}`))
}

func TestRequestLogGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	reg := prometheus.NewRegistry()

	r := gin.New()
	r.Use(RequestLogGin(zap.New(core), metrics.NewCounter(reg), metrics.NewRequestDuration(reg)))
	r.POST("/login", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		c.String(http.StatusOK, string(b))
	})

	body := `{"login":"alice","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, body, rr.Body.String(), "handler must still see the full body")

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/login", fields["url"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotContains(t, fields["body"], "hunter22")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "palmr_general_counters")
	assert.Contains(t, names, "palmr_http_request_duration_seconds")
}

func TestRequestLogGin_SkipsMetricsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestLogGin(zap.New(core), nil, nil))
	r.GET("/api/v1/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, logs.Len())
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}
