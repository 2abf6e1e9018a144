//go:build !asyncstackdebug

package asyncstack

// Without the asyncstackdebug tag the enumerable leaf set is compiled out:
// marking stays lock-free and allocation-free, and sweeps yield nothing.

func leafStoreInsert(*Frame) {}

func leafStoreRemove(*Frame) {}

func leafStoreSweep(func(*Frame)) {}
