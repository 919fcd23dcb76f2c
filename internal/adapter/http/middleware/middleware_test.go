package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"funding-platform/internal/core/domain"
	"funding-platform/internal/core/ports"
	"funding-platform/pkg/apperror"
	"funding-platform/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	identity ports.Identity
	err      error
}

func (v *stubVerifier) Verify(initData string) (ports.Identity, error) {
	if v.err != nil {
		return ports.Identity{}, v.err
	}
	return v.identity, nil
}

type stubIdentityService struct {
	user *domain.User
	err  error
}

func (s *stubIdentityService) EnsureUser(ctx context.Context, telegramID string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func newAuthRouter(verifier ports.InitDataVerifier, identitySvc ports.IdentityService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/protected", InitDataAuth(verifier, identitySvc, zerolog.Nop()), func(c *gin.Context) {
		user, ok := UserFromContext(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		// Echo the restored body so tests can assert it survived the
		// middleware's read.
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusOK, gin.H{
			"telegram_id": user.TelegramID,
			"body":        string(body),
		})
	})
	return r
}

func doPost(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/protected", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestInitDataAuth_Success(t *testing.T) {
	user := &domain.User{ID: uuid.New(), TelegramID: "42", Role: domain.RoleUser, CreatedAt: time.Now().UTC()}
	r := newAuthRouter(
		&stubVerifier{identity: ports.Identity{TelegramID: "42"}},
		&stubIdentityService{user: user},
	)

	payload := `{"initData":"query","amount":"10"}`
	w := doPost(r, payload)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		TelegramID string `json:"telegram_id"`
		Body       string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "42", resp.TelegramID)
	assert.Equal(t, payload, resp.Body, "body must be restored for the handler")
}

func TestInitDataAuth_VerificationFailure(t *testing.T) {
	r := newAuthRouter(
		&stubVerifier{err: apperror.ErrAccessDeniedInitData()},
		&stubIdentityService{},
	)

	w := doPost(r, `{"initData":"tampered"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "access_denied_initdata", errorCode(t, w))
}

func TestInitDataAuth_MissingInitData(t *testing.T) {
	r := newAuthRouter(&stubVerifier{}, &stubIdentityService{})

	for _, body := range []string{`{}`, `{"initData":""}`, `not json`, ``} {
		w := doPost(r, body)
		assert.Equal(t, http.StatusForbidden, w.Code, "body %q", body)
		assert.Equal(t, "access_denied_initdata", errorCode(t, w), "body %q", body)
	}
}

func TestInitDataAuth_UserResolutionFailure(t *testing.T) {
	r := newAuthRouter(
		&stubVerifier{identity: ports.Identity{TelegramID: "42"}},
		&stubIdentityService{err: errors.New("store down")},
	)

	w := doPost(r, `{"initData":"query"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "access_denied_user", errorCode(t, w))
}

func TestMaxBodySize_Exceeded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MaxBodySize(16))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(make([]byte, 64)))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("tiny"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestTimeout_DeadlineSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTimeout(5 * time.Second))
	r.GET("/deadline", func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/deadline", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestTimeout_Expires(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTimeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
			c.AbortWithStatus(http.StatusGatewayTimeout)
		case <-time.After(time.Second):
			c.Status(http.StatusOK)
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestRequestTimeout_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTimeout(0))
	r.GET("/no-deadline", func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no-deadline", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", errorCode(t, w))
}
