package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// 2025-01-01 00:00:00 UTC，毫秒
	idEpochMilli int64 = 1735689600000

	nodeBits uint8 = 10
	seqBits  uint8 = 12

	maxNodeID int64 = -1 ^ (-1 << nodeBits)
	maxSeq    int64 = -1 ^ (-1 << seqBits)
)

// Snowflake 生成战报 ID：时间戳 | 节点 | 序号。
type Snowflake struct {
	mu     sync.Mutex
	nodeID int64
	lastTS int64
	seq    int64
}

func NewSnowflake(nodeID int64) (*Snowflake, error) {
	if nodeID < 0 || nodeID > maxNodeID {
		return nil, fmt.Errorf("snowflake node id out of range: %d", nodeID)
	}
	return &Snowflake{nodeID: nodeID}, nil
}

func (s *Snowflake) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := time.Now().UnixMilli()
	if ts < s.lastTS {
		ts = s.lastTS
	}
	if ts == s.lastTS {
		s.seq = (s.seq + 1) & maxSeq
		if s.seq == 0 {
			for ts <= s.lastTS {
				ts = time.Now().UnixMilli()
			}
		}
	} else {
		s.seq = 0
	}
	s.lastTS = ts
	return ((ts - idEpochMilli) << (nodeBits + seqBits)) | (s.nodeID << seqBits) | s.seq
}

var (
	reportIDOnce sync.Once
	reportIDGen  *Snowflake
)

// NextReportID 用进程级生成器发号，节点号取 BATTLE_NODE_ID（缺省/非法时为 1）。
func NextReportID() int64 {
	reportIDOnce.Do(func() {
		node := int64(1)
		if raw := strings.TrimSpace(os.Getenv("BATTLE_NODE_ID")); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n >= 0 && n <= maxNodeID {
				node = n
			}
		}
		reportIDGen, _ = NewSnowflake(node)
	})
	return reportIDGen.NextID()
}
