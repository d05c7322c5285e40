// Package bettype normalizes wager intake strings into the closed bet-type
// enum the evaluator understands. The intake feed uses a mix of English and
// Chinese tags; aliasing is resolved here, at the boundary, so the evaluator
// never sees raw strings.
package bettype

import (
	"fmt"
	"strings"

	"github.com/spinworks/draw10/internal/domain"
)

// Resolved is the outcome of normalizing a bet-type tag. Position is non-zero
// only for named-rank tags, where the rank is part of the tag itself.
type Resolved struct {
	Kind     domain.BetKind
	Position int
}

var kindAliases = map[string]Resolved{
	// exact-number
	"exact":  {Kind: domain.BetKindExact},
	"number": {Kind: domain.BetKindExact},
	"定位胆":    {Kind: domain.BetKindExact},

	// named-rank two-side
	"champion":  {Kind: domain.BetKindPositionSide, Position: 1},
	"冠军":        {Kind: domain.BetKindPositionSide, Position: 1},
	"runner_up": {Kind: domain.BetKindPositionSide, Position: 2},
	"亚军":        {Kind: domain.BetKindPositionSide, Position: 2},
	"third":     {Kind: domain.BetKindPositionSide, Position: 3},
	"季军":        {Kind: domain.BetKindPositionSide, Position: 3},
	"fourth":    {Kind: domain.BetKindPositionSide, Position: 4},
	"第四名":       {Kind: domain.BetKindPositionSide, Position: 4},
	"fifth":     {Kind: domain.BetKindPositionSide, Position: 5},
	"第五名":       {Kind: domain.BetKindPositionSide, Position: 5},
	"sixth":     {Kind: domain.BetKindPositionSide, Position: 6},
	"第六名":       {Kind: domain.BetKindPositionSide, Position: 6},
	"seventh":   {Kind: domain.BetKindPositionSide, Position: 7},
	"第七名":       {Kind: domain.BetKindPositionSide, Position: 7},
	"eighth":    {Kind: domain.BetKindPositionSide, Position: 8},
	"第八名":       {Kind: domain.BetKindPositionSide, Position: 8},
	"ninth":     {Kind: domain.BetKindPositionSide, Position: 9},
	"第九名":       {Kind: domain.BetKindPositionSide, Position: 9},
	"tenth":     {Kind: domain.BetKindPositionSide, Position: 10},
	"第十名":       {Kind: domain.BetKindPositionSide, Position: 10},

	// generic two-side (position supplied separately)
	"position": {Kind: domain.BetKindGenericSide},
	"两面":       {Kind: domain.BetKindGenericSide},

	// dragon/tiger
	"dragon_tiger": {Kind: domain.BetKindDragonTiger},
	"龙虎":           {Kind: domain.BetKindDragonTiger},

	// first+second sum
	"sum":      {Kind: domain.BetKindSumExact},
	"冠亚和":      {Kind: domain.BetKindSumExact},
	"冠亚和值":     {Kind: domain.BetKindSumExact},
	"sum_side": {Kind: domain.BetKindSumSide},
	"冠亚和两面":    {Kind: domain.BetKindSumSide},
}

var sideAliases = map[string]domain.BetSide{
	"big":    domain.SideBig,
	"大":      domain.SideBig,
	"small":  domain.SideSmall,
	"小":      domain.SideSmall,
	"odd":    domain.SideOdd,
	"单":      domain.SideOdd,
	"even":   domain.SideEven,
	"双":      domain.SideEven,
	"dragon": domain.SideDragon,
	"龙":      domain.SideDragon,
	"tiger":  domain.SideTiger,
	"虎":      domain.SideTiger,
}

// ResolveKind maps a bet-type tag (canonical or alias, either language) to its
// bet kind. For named-rank tags the rank is returned as Position.
func ResolveKind(tag string) (Resolved, error) {
	key := strings.ToLower(strings.TrimSpace(tag))
	if r, ok := kindAliases[key]; ok {
		return r, nil
	}
	return Resolved{}, fmt.Errorf("%w: %q", domain.ErrUnknownBetKind, tag)
}

// ResolveSide maps a two-side or dragon/tiger value string to its side.
func ResolveSide(value string) (domain.BetSide, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if s, ok := sideAliases[key]; ok {
		return s, nil
	}
	return domain.SideNone, fmt.Errorf("%w: unknown side %q", domain.ErrInvalidInput, value)
}
