package config

import (
	"time"
)

// GetUpdateInterval returns the update interval as time.Duration
func (s *FeedSettings) GetUpdateInterval() time.Duration {
	if s.UpdateInterval <= 0 {
		return 3600 * time.Second // default 1 hour
	}
	return time.Duration(s.UpdateInterval) * time.Second
}
