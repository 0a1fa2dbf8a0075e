package checkout

import "strings"

// GatewayMode is sandbox vs production, inferred from the published key's
// prefix convention. Mandates (UPI autopay) cannot originate in sandbox.
type GatewayMode string

const (
	ModeTest GatewayMode = "test"
	ModeLive GatewayMode = "live"
)

const testKeyPrefix = "rzp_test_"

// ResolveGatewayMode classifies the gateway public key. It is pure and is
// called fresh on every submission; the key itself comes from configuration
// fetched at page load. An empty key blocks the flow with ErrGatewayNotConfigured.
func ResolveGatewayMode(key string) (GatewayMode, error) {
	if key == "" {
		return "", ErrGatewayNotConfigured
	}
	if strings.HasPrefix(key, testKeyPrefix) {
		return ModeTest, nil
	}
	return ModeLive, nil
}
