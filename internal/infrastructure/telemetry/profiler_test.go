package telemetry

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false, ApplicationName: "stockflow"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.Equal(t, "stockflow", p.GetConfig().ApplicationName)
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "stockflow"}, nil)
	assert.ErrorIs(t, err, errProfilerAddress)

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, nil)
	assert.ErrorIs(t, err, errProfilerAppName)
}

func TestProfiler_ProfileTypes(t *testing.T) {
	p := &Profiler{}
	assert.Equal(t, DefaultProfileTypes, p.profileTypes())

	p.config.ProfileTypes = []pyroscope.ProfileType{pyroscope.ProfileCPU}
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU}, p.profileTypes())
}

func TestProfilerTags(t *testing.T) {
	t.Setenv("HOSTNAME", "node-1")
	t.Setenv("POD_NAME", "")

	tags := profilerTags(map[string]string{"env": "test", "hostname": "override"})
	assert.Equal(t, map[string]string{"env": "test", "hostname": "override"}, tags)

	tags = profilerTags(nil)
	assert.Equal(t, map[string]string{"hostname": "node-1"}, tags)
}
