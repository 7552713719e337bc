package diagram

import "fmt"

// seqIDs returns a deterministic id generator: e1, e2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("e%d", n)
	}
}

func newTestStore(opts ...Option) *Store {
	return NewStore(append([]Option{WithIDGenerator(seqIDs())}, opts...)...)
}
