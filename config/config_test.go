package config

import "testing"
import "github.com/stretchr/testify/assert"

import (
	"runtime"
)

func TestDefaultsAreUsable(t *testing.T) {
	x := assert.New(t)
	c := Default()
	x.True(c.NumberOfPartitions > 0)
	x.True(c.NumberOfBlocks > 0)
	x.True(c.MaxBlockSize > 0)
	x.Equal("pattern", c.FlushMethod)
}

func TestCopyIsIndependent(t *testing.T) {
	x := assert.New(t)
	a := Default()
	b := a.Copy()
	b.NumberOfPartitions = 17
	x.Equal(1, a.NumberOfPartitions)
	x.Equal(17, b.NumberOfPartitions)
}

func TestWorkers(t *testing.T) {
	x := assert.New(t)
	c := Default()
	c.Parallelism = 0
	x.Equal(1, c.Workers())
	c.Parallelism = -1
	x.Equal(runtime.NumCPU(), c.Workers())
	c.Parallelism = 4
	x.Equal(4, c.Workers())
}
