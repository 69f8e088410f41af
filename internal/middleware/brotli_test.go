package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brotliRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/", handler)
	return r
}

func doBrotliRequest(t *testing.T, r *gin.Engine, acceptEncoding string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBrotliCompressesLargeResponse(t *testing.T) {
	body := strings.Repeat("a", 4096)
	r := brotliRouter(func(c *gin.Context) {
		c.String(http.StatusOK, body)
	})

	w := doBrotliRequest(t, r, "br")
	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))

	decoded, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))
}

func TestBrotliSkipsSmallResponse(t *testing.T) {
	r := brotliRouter(func(c *gin.Context) {
		c.String(http.StatusOK, "tiny")
	})

	w := doBrotliRequest(t, r, "br")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "tiny", w.Body.String())
}

func TestBrotliSkipsClientsWithoutSupport(t *testing.T) {
	r := brotliRouter(func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("a", 4096))
	})

	w := doBrotliRequest(t, r, "gzip")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
}

// A chunked handler whose final write is below the threshold: the tail
// must still travel through the compressor once the encoding is armed.
func TestBrotliCompressesShortTailAfterArming(t *testing.T) {
	head := bytes.Repeat([]byte("x"), 2048)
	tail := []byte("short tail")
	r := brotliRouter(func(c *gin.Context) {
		c.Status(http.StatusOK)
		_, err := c.Writer.Write(head)
		require.NoError(t, err)
		_, err = c.Writer.Write(tail)
		require.NoError(t, err)
	})

	w := doBrotliRequest(t, r, "br")
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))

	decoded, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, head...), tail...), decoded)
}
