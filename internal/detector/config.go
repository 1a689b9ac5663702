package detector

import "time"

// Config tunes the detection thresholds. The zero value is unusable; call
// DefaultConfig and override as needed.
type Config struct {
	// InsiderLookback bounds how long before a trade a communication may
	// mention its symbol and still count as evidence.
	InsiderLookback time.Duration `mapstructure:"insider_lookback"`
	// InsiderHighThreshold is the evidence count above which an insider
	// trading violation escalates from medium to high.
	InsiderHighThreshold int `mapstructure:"insider_high_threshold"`
	// WashWindow bounds the gap between an adjacent buy/sell pair.
	WashWindow time.Duration `mapstructure:"wash_window"`
	// ManipulationLookback bounds the communication scan before a
	// coordinated trading bucket.
	ManipulationLookback time.Duration `mapstructure:"manipulation_lookback"`
	// BucketGranularity is the fixed interval trades are floored to when
	// looking for concurrent activity.
	BucketGranularity time.Duration `mapstructure:"bucket_granularity"`
	// PrivateMessageThreshold is the message count a pair must exceed to be
	// flagged as frequent private messaging.
	PrivateMessageThreshold int `mapstructure:"private_message_threshold"`
	// CoordinationMinTrades is the bucket-wide trade count a minute must
	// exceed before coordinated trading sub-groups are inspected.
	CoordinationMinTrades int `mapstructure:"coordination_min_trades"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		InsiderLookback:         60 * time.Minute,
		InsiderHighThreshold:    2,
		WashWindow:              30 * time.Minute,
		ManipulationLookback:    30 * time.Minute,
		BucketGranularity:       time.Minute,
		PrivateMessageThreshold: 5,
		CoordinationMinTrades:   2,
	}
}
