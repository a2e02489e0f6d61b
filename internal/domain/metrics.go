package domain

import "time"

// MetricsSample is one point of a VM's real-time metrics feed.
type MetricsSample struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	NetworkRxBps  int64     `json:"network_rx_bps"`
	NetworkTxBps  int64     `json:"network_tx_bps"`
	DiskReadBps   int64     `json:"disk_read_bps"`
	DiskWriteBps  int64     `json:"disk_write_bps"`
	Timestamp     time.Time `json:"timestamp"`
}
