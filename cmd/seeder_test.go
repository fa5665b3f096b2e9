package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ussdlab/journey-console/internal/gateway"
)

func TestDemoGatewaysUseKnownEnums(t *testing.T) {
	for _, g := range demoGateways() {
		assert.True(t, gateway.ValidStatus(g.Status), "gateway %s has unknown status %q", g.ID, g.Status)
		assert.True(t, gateway.ValidType(g.GatewayType), "gateway %s has unknown type %q", g.ID, g.GatewayType)
		assert.NotEmpty(t, g.CarrierID, "gateway %s has no carrier", g.ID)
	}
}
