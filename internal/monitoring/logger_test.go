package monitoring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	assert.True(t, called, "custom logger was not called")

	// nil installs a no-op logger
	called = false
	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("test message") })
	assert.False(t, called)
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
	assert.NotPanics(t, func() { Logf("test message: %s", "value") })
}

func TestPrefixed(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	var rec Recorder
	logf := Prefixed("[migrate] ")
	// Prefixed resolves Logf at call time.
	SetLogger(rec.Logf)
	logf("applied %d", 1)

	assert.Equal(t, []string{"[migrate] applied 1"}, rec.Lines())
}

func TestRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	var (
		rec Recorder
		wg  sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec.Logf("line %d", i)
		}(i)
	}
	wg.Wait()

	lines := rec.Lines()
	assert.Len(t, lines, 8)
	assert.Contains(t, lines, "line 3")

	// Lines returns a copy.
	lines[0] = "changed"
	assert.NotEqual(t, "changed", rec.Lines()[0])
}
