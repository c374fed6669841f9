package monitor

import "time"

type Status struct {
	Store      bool      `json:"store"`
	Driver     string    `json:"driver"`
	Redis      bool      `json:"redis"`
	RedisUsed  bool      `json:"redis_enabled"`
	Buffer     bool      `json:"buffer"`
	BufferSize int       `json:"buffer_size"`
	LastCheck  time.Time `json:"last_check"`
}

// Healthy reports whether every configured dependency answered.
func (s Status) Healthy() bool {
	return s.Store && (s.Redis || !s.RedisUsed)
}
