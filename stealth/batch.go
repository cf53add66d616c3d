package stealth

import (
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// MaxRangeSize is the largest number of indexes derived in one batch.
const MaxRangeSize = 1 << 16

// IndexRange is an inclusive range of output indexes.
type IndexRange struct {
	// First is the first index of the range.
	First uint64

	// Last is the last index of the range.
	Last uint64
}

// NewIndexRange returns the range from first to last. A missing last index, or
// one below first, yields the single index first.
func NewIndexRange(first uint64, last fn.Option[uint64]) (IndexRange, error) {
	r := IndexRange{
		First: first,
		Last:  last.UnwrapOr(first),
	}
	if r.Last < r.First {
		r.Last = r.First
	}

	if err := r.Validate(); err != nil {
		return IndexRange{}, err
	}

	return r, nil
}

// SingleIndex returns the range holding only index.
func SingleIndex(index uint64) IndexRange {
	return IndexRange{First: index, Last: index}
}

// Validate returns ErrIndexOutOfRange if the range is inverted or wider than
// MaxRangeSize.
func (r IndexRange) Validate() error {
	switch {
	case r.Last < r.First:
		return fmt.Errorf("%w: last index %d below first index %d",
			ErrIndexOutOfRange, r.Last, r.First)

	case r.Last-r.First >= MaxRangeSize:
		return fmt.Errorf("%w: range %v holds more than %d indexes",
			ErrIndexOutOfRange, r, MaxRangeSize)
	}

	return nil
}

// Size returns the number of indexes in a valid range.
func (r IndexRange) Size() int {
	return int(r.Last-r.First) + 1
}

// Indexes returns every index of a valid range in ascending order.
func (r IndexRange) Indexes() []uint64 {
	indexes := make([]uint64, 0, r.Size())
	for i := r.First; ; i++ {
		indexes = append(indexes, i)

		// The last index may be the largest uint64, so we can't loop
		// on i <= r.Last.
		if i == r.Last {
			break
		}
	}

	return indexes
}

// String returns the range in first..last notation.
func (r IndexRange) String() string {
	return fmt.Sprintf("%d..%d", r.First, r.Last)
}

// DeriveRange runs f for every index of the range concurrently. The results
// are returned in index order, a failing index doesn't affect the others.
func DeriveRange[T any](r IndexRange,
	f func(index uint64) (T, error)) ([]fn.Result[T], error) {

	if err := r.Validate(); err != nil {
		return nil, err
	}

	derive := func(index uint64) fn.Result[T] {
		val, err := f(index)
		if err != nil {
			log.Warnf("Unable to derive index %d: %v", index, err)
			return fn.Err[T](err)
		}

		return fn.Ok(val)
	}
	results := fn.ForEachConc(r.Indexes(), derive)

	log.Debugf("Derived %d indexes of range %v", len(results), r)

	return results, nil
}

// Collect unpacks the results of a batch, failing on the first error.
func Collect[T any](results []fn.Result[T]) ([]T, error) {
	vals := make([]T, 0, len(results))
	for _, res := range results {
		val, err := res.Unpack()
		if err != nil {
			return nil, err
		}

		vals = append(vals, val)
	}

	return vals, nil
}
