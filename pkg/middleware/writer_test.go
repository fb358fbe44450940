package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// bareWriter implements only http.ResponseWriter.
type bareWriter struct {
	header http.Header
}

func (b *bareWriter) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}

func (b *bareWriter) Write(p []byte) (int, error) { return len(p), nil }

func (b *bareWriter) WriteHeader(int) {}

type flushHijackWriter struct {
	http.ResponseWriter
	flushed  bool
	hijacked bool
}

func (f *flushHijackWriter) Flush() { f.flushed = true }

func (f *flushHijackWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	f.hijacked = true
	return nil, nil, nil
}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	rw := newStatusRecorder(httptest.NewRecorder())
	rw.WriteHeader(http.StatusUnprocessableEntity)
	rw.WriteHeader(http.StatusInternalServerError)
	_, _ = rw.Write([]byte(`{"error":{}}`))

	assert.Equal(t, http.StatusUnprocessableEntity, rw.statusCode)
	assert.Equal(t, 12, rw.bytes)
}

func TestStatusRecorder_ImplicitOK(t *testing.T) {
	rw := newStatusRecorder(httptest.NewRecorder())
	_, _ = rw.Write([]byte("ok"))

	assert.Equal(t, http.StatusOK, rw.statusCode)
}

func TestStatusRecorder_Delegation(t *testing.T) {
	under := &flushHijackWriter{ResponseWriter: httptest.NewRecorder()}
	rw := newStatusRecorder(under)

	rw.Flush()
	_, _, err := rw.Hijack()

	assert.NoError(t, err)
	assert.True(t, under.flushed)
	assert.True(t, under.hijacked)
	assert.Same(t, under, rw.Unwrap())
}

func TestStatusRecorder_UnsupportedOptionalInterfaces(t *testing.T) {
	rw := newStatusRecorder(&bareWriter{})

	assert.NotPanics(t, rw.Flush)
	_, _, err := rw.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}
