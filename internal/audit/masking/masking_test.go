package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "ob_live_****wxyz", MaskSecret("ob_live_abcdefwxyz"))
}

func TestMaskSensitive(t *testing.T) {
	masked := MaskSensitive(map[string]any{
		"status":   "success",
		"password": "hunter2hunter",
		"gateway": map[string]any{
			"signature": "abcdef9876",
			"order_id":  "order_1",
		},
		" ": "dropped",
	})

	assert.Equal(t, "success", masked["status"])
	assert.Equal(t, "****nter", masked["password"])
	gateway := masked["gateway"].(map[string]any)
	assert.Equal(t, "****9876", gateway["signature"])
	assert.Equal(t, "order_1", gateway["order_id"])
	assert.NotContains(t, masked, " ")

	assert.Nil(t, MaskSensitive(nil))
}
