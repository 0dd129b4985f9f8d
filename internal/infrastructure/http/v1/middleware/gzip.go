package middleware

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

var gzipPool = sync.Pool{
	New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return w
	},
}

type gzipWriter struct {
	gin.ResponseWriter
	zw      *gzip.Writer
	written int
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	w.written += len(data)
	return w.zw.Write(data)
}

func (w *gzipWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipWriter) Written() bool {
	return w.written > 0 || w.ResponseWriter.Written()
}

func (w *gzipWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

// Gzip compresses responses for clients that accept gzip.
func Gzip() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		zw := gzipPool.Get().(*gzip.Writer)
		zw.Reset(c.Writer)

		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")
		gw := &gzipWriter{ResponseWriter: c.Writer, zw: zw}
		c.Writer = gw

		defer func() {
			if gw.written == 0 {
				// nothing written: drop the header instead of sending an empty gzip stream
				gw.Header().Del("Content-Encoding")
				zw.Reset(nopWriter{})
			}
			_ = zw.Close()
			gzipPool.Put(zw)
		}()

		c.Next()
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
