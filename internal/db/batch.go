package db

import (
	"fmt"

	"github.com/roach88/tidepool/internal/hostval"
)

// CacheBehavior tells the batch executor how a mutation interacts with the
// record identity cache.
type CacheBehavior int

const (
	// CacheBehaviorRemove removes the record's cache key on commit.
	CacheBehaviorRemove CacheBehavior = -1

	// CacheBehaviorNone leaves the identity cache untouched.
	CacheBehaviorNone CacheBehavior = 0

	// CacheBehaviorAdd marks the record's cache key on commit.
	CacheBehaviorAdd CacheBehavior = 1
)

// Operation is one entry in a batch: a parameterized mutation applied once
// per args list, with an optional identity-cache annotation.
type Operation struct {
	// CacheBehavior controls the identity-cache delta for each args list.
	CacheBehavior CacheBehavior

	// Table names the record's table. Ignored when CacheBehavior is
	// CacheBehaviorNone.
	Table string

	// SQL is the parameterized mutation to run.
	SQL string

	// ArgsBatches is an ordered sequence of argument lists to apply to the
	// same SQL. When CacheBehavior is non-zero, the first element of every
	// list must be the record id as a host string.
	ArgsBatches []hostval.Array
}

// Batch executes a compound list of parameterized mutations atomically.
//
// Identity-cache deltas are collected during the transaction and applied
// only after commit returns, adds before removes: observers never see a
// cache state that reflects an uncommitted mutation. On any failure the
// transaction is rolled back, the deltas are discarded, and the cache is
// byte-identical to its pre-batch state.
func (d *Database) Batch(operations []Operation) error {
	var toAdd, toRemove []string

	err := d.inTransaction(func() error {
		for _, op := range operations {
			for _, args := range op.ArgsBatches {
				if err := d.executeUpdate(op.SQL, args); err != nil {
					return err
				}
				if op.CacheBehavior == CacheBehaviorNone {
					continue
				}
				if len(args) == 0 {
					return d.engineError(ErrCodeMissingID, "Failed to get ID of a record in batch - no arguments")
				}
				id, ok := hostval.AsString(args[0])
				if !ok {
					return d.engineError(ErrCodeMissingID, "Failed to get ID of a record in batch - first argument is not a string")
				}
				switch op.CacheBehavior {
				case CacheBehaviorAdd:
					toAdd = append(toAdd, CacheKey(op.Table, id))
				case CacheBehaviorRemove:
					toRemove = append(toRemove, CacheKey(op.Table, id))
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, key := range toAdd {
		d.markAsCached(key)
	}
	for _, key := range toRemove {
		d.removeFromCache(key)
	}
	return nil
}

// DecodeOperations decodes the host wire format for a batch: an array of
// operations, each an array of exactly four elements
// [cacheBehavior, table, sql, argsBatches]. The table element is ignored
// when cacheBehavior is 0.
func DecodeOperations(v hostval.Value) ([]Operation, error) {
	outer, ok := v.(hostval.Array)
	if !ok {
		return nil, fmt.Errorf("batch operations: expected array, got %T", v)
	}

	operations := make([]Operation, 0, len(outer))
	for i, elem := range outer {
		entry, ok := elem.(hostval.Array)
		if !ok {
			return nil, fmt.Errorf("batch operation %d: expected array, got %T", i, elem)
		}
		if len(entry) != 4 {
			return nil, fmt.Errorf("batch operation %d: expected 4 elements, got %d", i, len(entry))
		}

		behaviorNum, ok := hostval.AsNumber(entry[0])
		if !ok {
			return nil, fmt.Errorf("batch operation %d: cache behavior is not a number", i)
		}
		behavior := CacheBehavior(behaviorNum)
		if behavior != CacheBehaviorNone && behavior != CacheBehaviorAdd && behavior != CacheBehaviorRemove {
			return nil, fmt.Errorf("batch operation %d: invalid cache behavior %v", i, behaviorNum)
		}

		var table string
		if behavior != CacheBehaviorNone {
			table, ok = hostval.AsString(entry[1])
			if !ok {
				return nil, fmt.Errorf("batch operation %d: table is not a string", i)
			}
		}

		sql, ok := hostval.AsString(entry[2])
		if !ok {
			return nil, fmt.Errorf("batch operation %d: sql is not a string", i)
		}

		rawBatches, ok := entry[3].(hostval.Array)
		if !ok {
			return nil, fmt.Errorf("batch operation %d: args batches is not an array", i)
		}
		argsBatches := make([]hostval.Array, len(rawBatches))
		for j, rawArgs := range rawBatches {
			args, ok := rawArgs.(hostval.Array)
			if !ok {
				return nil, fmt.Errorf("batch operation %d: args batch %d is not an array", i, j)
			}
			argsBatches[j] = args
		}

		operations = append(operations, Operation{
			CacheBehavior: behavior,
			Table:         table,
			SQL:           sql,
			ArgsBatches:   argsBatches,
		})
	}

	return operations, nil
}
