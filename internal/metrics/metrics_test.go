package metrics

import (
	"testing"
	"time"

	gopsnet "github.com/shirou/gopsutil/v3/net"
)

func TestRates(t *testing.T) {
	base := time.Now()

	tests := []struct {
		name     string
		prev     *gopsnet.IOCountersStat
		cur      gopsnet.IOCountersStat
		prevTime time.Time
		curTime  time.Time
		wantSend float64
		wantRecv float64
	}{
		{
			name:    "first sample has no rate",
			prev:    nil,
			cur:     gopsnet.IOCountersStat{BytesSent: 1000, BytesRecv: 2000},
			curTime: base,
		},
		{
			name:     "steady traffic over two seconds",
			prev:     &gopsnet.IOCountersStat{BytesSent: 1000, BytesRecv: 2000},
			cur:      gopsnet.IOCountersStat{BytesSent: 3000, BytesRecv: 6000},
			prevTime: base,
			curTime:  base.Add(2 * time.Second),
			wantSend: 1000,
			wantRecv: 2000,
		},
		{
			name:     "counter reset reports zero",
			prev:     &gopsnet.IOCountersStat{BytesSent: 9000, BytesRecv: 9000},
			cur:      gopsnet.IOCountersStat{BytesSent: 100, BytesRecv: 100},
			prevTime: base,
			curTime:  base.Add(time.Second),
		},
		{
			name:     "no elapsed time reports zero",
			prev:     &gopsnet.IOCountersStat{BytesSent: 1000, BytesRecv: 1000},
			cur:      gopsnet.IOCountersStat{BytesSent: 2000, BytesRecv: 2000},
			prevTime: base,
			curTime:  base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send, recv := rates(tt.prev, &tt.cur, tt.prevTime, tt.curTime)
			if send != tt.wantSend {
				t.Errorf("send rate = %v, want %v", send, tt.wantSend)
			}
			if recv != tt.wantRecv {
				t.Errorf("recv rate = %v, want %v", recv, tt.wantRecv)
			}
		})
	}
}

func TestSamplerProducesTimestamp(t *testing.T) {
	s := NewSampler()
	snap := s.Sample()
	if snap.Timestamp == 0 {
		t.Error("snapshot timestamp not set")
	}
}
