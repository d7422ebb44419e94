package inspector

import "time"

// Config controls the inspector HTTP server.
type Config struct {
	// Addr is the listen address. Port 0 picks a free port; see Inspector.Addr.
	Addr              string        `json:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	// ClientBuffer is the number of reports queued per websocket client.
	// A client that falls further behind misses reports.
	ClientBuffer int `json:"client_buffer" yaml:"client_buffer"`
}

func DefaultConfig() Config {
	return Config{
		Addr:              ":7070",
		ReadHeaderTimeout: 5 * time.Second,
		ClientBuffer:      64,
	}
}
