package bettype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spinworks/draw10/internal/domain"
)

func TestResolveKind_CanonicalTags(t *testing.T) {
	tests := []struct {
		tag  string
		kind domain.BetKind
		pos  int
	}{
		{"exact", domain.BetKindExact, 0},
		{"number", domain.BetKindExact, 0},
		{"position", domain.BetKindGenericSide, 0},
		{"dragon_tiger", domain.BetKindDragonTiger, 0},
		{"sum", domain.BetKindSumExact, 0},
		{"sum_side", domain.BetKindSumSide, 0},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			r, err := ResolveKind(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, r.Kind)
			assert.Equal(t, tt.pos, r.Position)
		})
	}
}

func TestResolveKind_NamedRanksCarryPosition(t *testing.T) {
	ranks := []struct {
		tag string
		pos int
	}{
		{"champion", 1},
		{"runner_up", 2},
		{"third", 3},
		{"fourth", 4},
		{"fifth", 5},
		{"sixth", 6},
		{"seventh", 7},
		{"eighth", 8},
		{"ninth", 9},
		{"tenth", 10},
	}
	for _, tt := range ranks {
		t.Run(tt.tag, func(t *testing.T) {
			r, err := ResolveKind(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, domain.BetKindPositionSide, r.Kind)
			assert.Equal(t, tt.pos, r.Position)
		})
	}
}

func TestResolveKind_ChineseAliases(t *testing.T) {
	tests := []struct {
		tag  string
		kind domain.BetKind
		pos  int
	}{
		{"定位胆", domain.BetKindExact, 0},
		{"冠军", domain.BetKindPositionSide, 1},
		{"亚军", domain.BetKindPositionSide, 2},
		{"第十名", domain.BetKindPositionSide, 10},
		{"两面", domain.BetKindGenericSide, 0},
		{"龙虎", domain.BetKindDragonTiger, 0},
		{"冠亚和", domain.BetKindSumExact, 0},
		{"冠亚和值", domain.BetKindSumExact, 0},
		{"冠亚和两面", domain.BetKindSumSide, 0},
	}
	for _, tt := range tests {
		r, err := ResolveKind(tt.tag)
		require.NoError(t, err, tt.tag)
		assert.Equal(t, tt.kind, r.Kind, tt.tag)
		assert.Equal(t, tt.pos, r.Position, tt.tag)
	}
}

func TestResolveKind_NormalizesCaseAndWhitespace(t *testing.T) {
	r, err := ResolveKind("  Champion ")
	require.NoError(t, err)
	assert.Equal(t, domain.BetKindPositionSide, r.Kind)
	assert.Equal(t, 1, r.Position)

	r, err = ResolveKind("DRAGON_TIGER")
	require.NoError(t, err)
	assert.Equal(t, domain.BetKindDragonTiger, r.Kind)
}

func TestResolveKind_UnknownTag(t *testing.T) {
	_, err := ResolveKind("roulette")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownBetKind)
	assert.Contains(t, err.Error(), "roulette")

	_, err = ResolveKind("")
	assert.ErrorIs(t, err, domain.ErrUnknownBetKind)
}

func TestResolveSide(t *testing.T) {
	tests := []struct {
		value string
		side  domain.BetSide
	}{
		{"big", domain.SideBig},
		{"大", domain.SideBig},
		{"small", domain.SideSmall},
		{"小", domain.SideSmall},
		{"odd", domain.SideOdd},
		{"单", domain.SideOdd},
		{"even", domain.SideEven},
		{"双", domain.SideEven},
		{"dragon", domain.SideDragon},
		{"龙", domain.SideDragon},
		{"tiger", domain.SideTiger},
		{"虎", domain.SideTiger},
		{" Big ", domain.SideBig},
	}
	for _, tt := range tests {
		s, err := ResolveSide(tt.value)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.side, s, tt.value)
	}
}

func TestResolveSide_Unknown(t *testing.T) {
	s, err := ResolveSide("middle")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, domain.SideNone, s)
}
