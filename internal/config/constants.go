package config

// Default values for environment-tunable settings.
const (
	DefaultPort                     = 8080
	DefaultDBMaxConns               = 10
	DefaultDrawIntervalSeconds      = 300
	DefaultSettleTimeoutSeconds     = 30
	DefaultMaxDrawsPerDay           = 288
	DefaultSettleWorkers            = 8
	DefaultCompensationScanSeconds  = 60
	DefaultMaxSettleRetries         = 5
	DefaultRetryBackoffSeconds      = 30
	DefaultStaleRunMinutes          = 10
	DefaultWorkerPoolSize           = 4
	DefaultWorkerQueueSize          = 64
	DefaultAuditRetentionDays       = 180
	DefaultAutoDetectThresholdCents = int64(1_000_000)
	DefaultMaxRebateCapBps          = int64(110)
	DefaultMaxOddsThousandths       = int64(20_000)
)
