package config

// this holds the resolved configuration values from CLI
var (
	PlayStationAddr string // address of the console sending telemetry
	ReceivePort     int    // local UDP port for incoming telemetry
	HeartbeatPort   int    // console port receiving heartbeats
	StorageDir      string // directory for recorded lap files
	ArchivePath     string // path of the sqlite lap archive
	CarDBPath       string // path of the car name csv (optional)
	LogLevel        string // sets the log level (zap log level values)
	LogFormat       string // text vs json
	LogConfig       string // zapfilter rules for named loggers
	AlwaysRecord    bool   // record data even outside of races (replays)
)
