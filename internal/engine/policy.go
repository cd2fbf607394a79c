package engine

// Policy captures the behaviours the upstream material leaves open. The
// defaults match the loosest reading: withdrawals are disputable and a
// locked account keeps accepting deposits and withdrawals.
type Policy struct {
	// DisputeWithdrawals allows withdrawal entries as dispute targets.
	DisputeWithdrawals bool
	// LockedBlocksTransfers makes a locked account reject further deposit
	// and withdrawal records.
	LockedBlocksTransfers bool
}

// DefaultPolicy returns the default behaviour set.
func DefaultPolicy() Policy {
	return Policy{
		DisputeWithdrawals:    true,
		LockedBlocksTransfers: false,
	}
}
