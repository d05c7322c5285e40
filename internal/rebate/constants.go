package rebate

import "time"

// Chain cache sizing. One entry per active member; TTL bounds staleness after
// the external directory retunes caps.
const (
	ChainCacheSize = 4096
	ChainCacheTTL  = 5 * time.Minute
)

// Log messages
const (
	LogMsgRebateCapAnomaly = "Agent cumulative cap does not exceed parent cap, skipping node"
	LogMsgRebateCapClamped = "Agent cumulative cap above engine ceiling, clamping"
)

// Error context strings
const (
	ErrContextFailedToLoadChain    = "failed to load agent chain"
	ErrContextFailedToCheckPosting = "failed to check rebate posting"
	ErrContextFailedToCreditAgent  = "failed to credit agent rebate"
)
