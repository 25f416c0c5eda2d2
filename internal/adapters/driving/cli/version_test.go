package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	saved := version
	t.Cleanup(func() { version = saved })

	tests := []struct {
		name    string
		version string
		args    []string
		want    string
	}{
		{"full", "1.2.0", []string{"version"}, "voxqa version 1.2.0 (" + runtime.Version()},
		{"dev build", "dev", []string{"version"}, "voxqa version dev"},
		{"short", "1.2.0", []string{"version", "--short"}, "1.2.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version = tt.version
			out, err := run(t, "", tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestVersion_ShortHasNoPlatform(t *testing.T) {
	out, err := run(t, "", "version", "--short")
	require.NoError(t, err)
	assert.NotContains(t, out, runtime.GOOS)
}
