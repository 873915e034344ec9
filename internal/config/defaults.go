package config

// Default values for every setting, applied before the config file and
// environment are read.
const (
	DefaultChunkCapacity  = "4MiB"
	DefaultCacheThreshold = "16MiB"
	DefaultMaxMemUsage    = ""
	DefaultPipeline       = "auto"
	DefaultProgress       = true
	DefaultNoColor        = false
)
