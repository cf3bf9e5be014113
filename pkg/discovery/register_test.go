package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAgentRegistration(t *testing.T) {
	reg := NewAgentRegistration(Registration{
		Name:       "order-service",
		Port:       8080,
		HealthPath: "/health",
		Tags:       []string{"http"},
	}, "10.0.0.7")

	assert.Equal(t, "order-service-10.0.0.7-8080", reg.ID)
	assert.Equal(t, "order-service", reg.Name)
	assert.Equal(t, "10.0.0.7", reg.Address)
	assert.Equal(t, 8080, reg.Port)
	assert.Equal(t, []string{"http"}, reg.Tags)

	require.NotNil(t, reg.Check)
	assert.Equal(t, "http://10.0.0.7:8080/health", reg.Check.HTTP)
	assert.Empty(t, reg.Check.TCP)
	assert.Equal(t, "30s", reg.Check.DeregisterCriticalServiceAfter)
}
