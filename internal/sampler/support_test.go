package sampler

import (
	"math/rand"
	"testing"
)

func testRand(t *testing.T) *rand.Rand {
	t.Helper()
	return rand.New(rand.NewSource(1))
}
