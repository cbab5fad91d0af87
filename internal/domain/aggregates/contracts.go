package aggregates

// WriteTxOwnership says who opens the transaction around a write.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate: each aggregate method opens and commits its own transaction.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
)

// ReadPolicy limits which reads an aggregate performs.
type ReadPolicy string

const (
	// ReadPolicyInvariantScoped: only reads needed to decide a write. Listing and
	// search stay on the table repos.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
)

// Contract describes an aggregate's write boundary.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Notes            string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}
