package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-marks/internal/models"
	"github.com/noah-isme/sma-marks/internal/service"
)

func newAuthRouter(enabled bool, tokens *service.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/records", AdminAuth(tokens, enabled), func(c *gin.Context) {
		subject := ""
		if claims := AdminFromContext(c); claims != nil {
			subject = claims.Subject
		}
		c.String(http.StatusCreated, subject)
	})
	return r
}

func TestAdminAuth(t *testing.T) {
	tokens := service.NewTokenService(service.TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "sma-marks"})
	issued, err := tokens.Issue("ops")
	require.NoError(t, err)
	router := newAuthRouter(true, tokens)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc", status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + issued.AccessToken, status: http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/records", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestAdminAuthDisabled(t *testing.T) {
	router := newAuthRouter(false, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/records", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

type nonAdminTokens struct{}

func (nonAdminTokens) Validate(string) (*models.AdminClaims, error) {
	return &models.AdminClaims{Role: "viewer"}, nil
}

func TestAdminFromContextIgnoresOtherTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextAdminKey, "not claims")
	assert.Nil(t, AdminFromContext(c))

	router := gin.New()
	router.GET("/", AdminAuth(nonAdminTokens{}, true), func(c *gin.Context) {
		c.String(http.StatusOK, AdminFromContext(c).Role)
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer x")
	router.ServeHTTP(rec, req)
	assert.Equal(t, "viewer", rec.Body.String())
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.GET("/records", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/records", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",path="/records",status="200"} 1`))
	assert.True(t, strings.Contains(body, `path="unmatched",status="404"`))
	assert.False(t, strings.Contains(body, `path="/metrics"`))
}
