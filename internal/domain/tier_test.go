package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		name           string
		lifetimePoints int64
		want           TierType
	}{
		{name: "zero", lifetimePoints: 0, want: TierBronze},
		{name: "bronze upper bound", lifetimePoints: 1000, want: TierBronze},
		{name: "silver lower bound", lifetimePoints: 1001, want: TierSilver},
		{name: "silver upper bound", lifetimePoints: 5000, want: TierSilver},
		{name: "gold lower bound", lifetimePoints: 5001, want: TierGold},
		{name: "gold upper bound", lifetimePoints: 10000, want: TierGold},
		{name: "platinum lower bound", lifetimePoints: 10001, want: TierPlatinum},
		{name: "platinum large", lifetimePoints: 1_000_000, want: TierPlatinum},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, TierFor(c.lifetimePoints))
		})
	}
}
