package monitoring

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("scanned %d particles", 3)
	assert.Equal(t, []string{"scanned 3 particles"}, got)

	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("dropped %d", 1) })
	assert.Len(t, got, 1, "no-op logger must not reach the old callback")
}

func TestNewStreams(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tests := []struct {
		name             string
		verbose, trace   bool
		wantDiag, wantTr bool
	}{
		{"quiet", false, false, false, false},
		{"verbose", true, false, true, false},
		{"trace only", false, true, false, true},
		{"all", true, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewStreams(&buf, tt.verbose, tt.trace)
			assert.NotNil(t, s.Ops)
			assert.Equal(t, tt.wantDiag, s.Diag != nil)
			assert.Equal(t, tt.wantTr, s.Trace != nil)
		})
	}
}
