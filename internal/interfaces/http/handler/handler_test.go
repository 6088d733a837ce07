package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// apiResponse mirrors dto.Response with a raw data payload
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

func viewerOf(role membership.Role) membership.Viewer {
	return membership.Viewer{MemberID: uuid.New(), Role: role, Degree: membership.DegreeMaster}
}

// withViewer stands in for the JWT middleware
func withViewer(v *membership.Viewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.RequestIDKey, "test-request")
		if v != nil {
			c.Set(middleware.ViewerKey, *v)
		}
		c.Next()
	}
}

func newTestEngine(v *membership.Viewer) *gin.Engine {
	r := gin.New()
	r.Use(withViewer(v))
	return r
}

func perform(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func decodeData(t *testing.T, resp apiResponse, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, out))
}
