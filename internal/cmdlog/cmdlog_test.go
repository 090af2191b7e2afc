package cmdlog

import (
	"io"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	f()
	require.NoError(t, w.Close())
	os.Stdout = old
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestRunLogsInvocationOutcome(t *testing.T) {
	out := captureStdout(t, func() {
		require.NoError(t, Run("classify", func() error { return nil }))
	})
	require.Contains(t, out, "classify_ok")
	require.Contains(t, out, "invocation_id")
	require.Contains(t, out, "elapsed")
}

func TestRunPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	var got error
	out := captureStdout(t, func() {
		got = Run("extract", func() error { return boom })
	})
	require.Equal(t, boom, got)
	require.Contains(t, out, "extract_error")
	require.Contains(t, out, "boom")
}
