package configuration

type LoggingConfig struct {
	// Enabled defaults to true if not set
	Enabled DefaultTrueBool `json:"enabled"`
	// Number of breaths between two flushes (and rotation checks) of the data log.
	FlushEvery int `json:"flushEvery"`
	// Size of the data log (in bytes) at which it is rotated.
	MaxFileSize int64 `json:"maxFileSize"`
	// Minimum free space (in bytes) on the data log volume, logging is disabled below.
	MinFreeDiskSpace uint64 `json:"minFreeDiskSpace"`
	// Number of entries buffered in memory before samples are dropped.
	BufferSize int `json:"bufferSize"`
}
