package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callMetrics(t *testing.T, authHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := MetricsBasicAuth()(func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	})
	return rec, handler(c)
}

func basicAuthHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestMetricsBasicAuth(t *testing.T) {
	t.Run("認証設定がなければ素通しする", func(t *testing.T) {
		os.Unsetenv("METRICS_USER")
		os.Unsetenv("METRICS_PASSWORD")

		rec, err := callMetrics(t, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "metrics", rec.Body.String())
	})

	t.Run("正しい認証情報で通過できる", func(t *testing.T) {
		os.Setenv("METRICS_USER", "ops")
		os.Setenv("METRICS_PASSWORD", "secret")
		defer func() {
			os.Unsetenv("METRICS_USER")
			os.Unsetenv("METRICS_PASSWORD")
		}()

		rec, err := callMetrics(t, basicAuthHeader("ops", "secret"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("誤った認証情報は401になる", func(t *testing.T) {
		os.Setenv("METRICS_USER", "ops")
		os.Setenv("METRICS_PASSWORD", "secret")
		defer func() {
			os.Unsetenv("METRICS_USER")
			os.Unsetenv("METRICS_PASSWORD")
		}()

		_, err := callMetrics(t, basicAuthHeader("ops", "wrong"))
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("認証設定ありでヘッダーなしは拒否される", func(t *testing.T) {
		os.Setenv("METRICS_USER", "ops")
		os.Setenv("METRICS_PASSWORD", "secret")
		defer func() {
			os.Unsetenv("METRICS_USER")
			os.Unsetenv("METRICS_PASSWORD")
		}()

		_, err := callMetrics(t, "")
		require.Error(t, err)
	})
}
