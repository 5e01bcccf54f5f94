package refresh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamToTempFileWritesResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("192.0.2.1\n198.51.100.2\n"))
	}))
	defer srv.Close()

	path, err := streamToTempFile(context.Background(), srv.Client(), srv.URL, "fetch-test-*.txt")
	require.NoError(t, err)
	defer os.Remove(path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "192.0.2.1\n198.51.100.2\n", string(content))
}

func TestStreamToTempFileErrorsOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := streamToTempFile(context.Background(), srv.Client(), srv.URL, "fetch-test-*.txt")
	require.Error(t, err)
}

func TestScanLinesInvokesCallbackPerLine(t *testing.T) {
	f, err := os.CreateTemp("", "scanlines-*.txt")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	f.WriteString("a\nb\n\nc\n")
	f.Close()

	var lines []string
	err = scanLines(f.Name(), func(line string) error {
		lines = append(lines, line)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "", "c"}, lines)
}
