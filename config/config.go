package config

import "time"

type RedisConfig struct {
	Addrs     []string
	Namespace string
}

type Config struct {
	RedisConfig    RedisConfig
	HttpPort       int
	WorkerCount    int
	WorkerCapacity int
	BatchSize      int
	MaxAttempts    int
	BaseBackoff    time.Duration
	PollInterval   time.Duration
	SchedulerTick  time.Duration
	MonitorTick    time.Duration
	MaxSteps       int
	BridgeBaseUrl  string
	CloudBaseUrl   string
	DefinitionTTL  time.Duration
}
