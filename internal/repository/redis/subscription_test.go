package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionIDIsStable(t *testing.T) {
	a := SubscriptionID("https://push.example/abc")
	b := SubscriptionID("https://push.example/abc")
	c := SubscriptionID("https://push.example/xyz")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64, "hex-encoded sha256")
}
