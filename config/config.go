package config

import (
	"runtime"
)

// Config carries the run parameters every worker must agree on.
// Partition coverage is only correct when all workers share the same
// NumberOfPartitions, NumberOfBlocks, and MaxBlockSize.
type Config struct {
	NumberOfPartitions int
	NumberOfBlocks     int
	MaxBlockSize       int
	FlushMethod        string
	Parallelism        int
}

func Default() *Config {
	return &Config{
		NumberOfPartitions: 1,
		NumberOfBlocks:     100,
		MaxBlockSize:       10000,
		FlushMethod:        "pattern",
		Parallelism:        -1,
	}
}

func (c *Config) Copy() *Config {
	return &Config{
		NumberOfPartitions: c.NumberOfPartitions,
		NumberOfBlocks:     c.NumberOfBlocks,
		MaxBlockSize:       c.MaxBlockSize,
		FlushMethod:        c.FlushMethod,
		Parallelism:        c.Parallelism,
	}
}

func (c *Config) Workers() int {
	if c.Parallelism == 0 {
		return 1
	} else if c.Parallelism == -1 {
		return runtime.NumCPU()
	} else {
		return c.Parallelism
	}
}
