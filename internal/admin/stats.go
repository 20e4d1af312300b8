// AngelaMos | 2026
// stats.go

package admin

type SystemStats struct {
	SessionStore SessionStoreStatus `json:"session_store"`
	Backend      *BackendStatus     `json:"backend,omitempty"`
	Runtime      RuntimeStats       `json:"runtime"`
}

type SessionStoreStatus struct {
	Kind     string          `json:"kind"`
	Healthy  bool            `json:"healthy"`
	Database *DBPoolStats    `json:"database,omitempty"`
	Redis    *RedisPoolStats `json:"redis,omitempty"`
}

type BackendStatus struct {
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
	Latency   string `json:"latency"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
