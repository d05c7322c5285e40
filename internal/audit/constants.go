package audit

// DefaultRetentionDays is how long audit records are kept before the cleanup
// job removes them.
const DefaultRetentionDays = 180

// Log messages
const (
	LogMsgEventLogged           = "audit event recorded"
	LogMsgFailedToLogEvent      = "failed to record audit event"
	LogMsgFailedToEncodePayload = "failed to encode audit payload"
	LogMsgCleanupJobStarting    = "starting audit cleanup job"
	LogMsgCleanupJobFailed      = "audit cleanup failed"
	LogMsgCleanupJobCompleted   = "audit cleanup completed"
)
