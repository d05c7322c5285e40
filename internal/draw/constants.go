package draw

// Log messages
const (
	LogMsgDrawGenerated       = "Draw result generated"
	LogMsgBiasedResultInvalid = "Biased draw result failed permutation check, falling back to unbiased"
)
