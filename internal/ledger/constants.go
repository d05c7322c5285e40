package ledger

// Error context strings
const (
	ErrContextFailedToInsertPosting = "failed to insert posting"
	ErrContextFailedToUpdateBalance = "failed to update balance"
)
