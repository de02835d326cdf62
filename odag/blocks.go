package odag

import ()

// Block ownership arithmetic for partitioned enumeration. The
// combination universe is cut into fixed-size blocks and block b
// belongs to worker b mod numPartitions. These functions are pure:
// every worker derives the same disjoint coverage of the universe from
// them with no coordination.

// BlockOwner is the partition id that owns blockID.
func BlockOwner(blockID int64, numPartitions int) int {
	return int(blockID % int64(numPartitions))
}

// BlocksToSkip is the forward distance, wrapping around numPartitions,
// from blockID to the next block owned by partitionID. Zero when
// partitionID already owns blockID.
func BlocksToSkip(blockID int64, partitionID, numPartitions int) int {
	owner := BlockOwner(blockID, numPartitions)
	mine := partitionID
	if mine < owner {
		mine += numPartitions
	}
	return mine - owner
}
