package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Tier
	}{
		{100, TierOptimal},
		{70, TierOptimal},
		{69, TierSubOptimal},
		{50, TierSubOptimal},
		{49, TierCritical},
		{0, TierCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.score), "score %d", tc.score)
	}
}
