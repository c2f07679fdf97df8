// Package mirror implements the transaction reconciliation engine that
// mirrors Up bank transactions into a Firefly III ledger.
package mirror

import (
	"fmt"
	"strconv"
	"strings"
)

// AccountMap maps Up account IDs to Firefly III account IDs. It is built
// once at startup and is thereafter read-only, so concurrent lookups need
// no synchronization.
type AccountMap struct {
	primary string
	dest    map[string]int
}

// ParseAccountMap parses a comma-separated list of sourceID:destinationID
// pairs. Each pair splits on its first colon and the destination must be a
// positive integer. At least two pairs are required: with fewer than two
// accounts a transfer counterparty cannot be distinguished.
//
// The first pair parsed becomes the primary account, used as the implicit
// counterparty when synthesizing round-up and quick-save transfers. First
// position is a documented but arbitrary convention.
func ParseAccountMap(raw string) (*AccountMap, error) {
	m := &AccountMap{
		dest: make(map[string]int),
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		source, dest, ok := strings.Cut(pair, ":")
		if !ok || source == "" {
			return nil, fmt.Errorf("invalid account mapping %q: want sourceID:destinationID", pair)
		}

		id, err := strconv.Atoi(dest)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid destination account ID %q in mapping %q", dest, pair)
		}

		if m.primary == "" {
			m.primary = source
		}
		m.dest[source] = id
	}

	if len(m.dest) < 2 {
		return nil, fmt.Errorf("account map needs at least two accounts, got %d", len(m.dest))
	}

	return m, nil
}

// Lookup returns the destination account ID for an Up account ID
func (m *AccountMap) Lookup(sourceID string) (int, bool) {
	id, ok := m.dest[sourceID]
	return id, ok
}

// Primary returns the Up account ID of the primary account
func (m *AccountMap) Primary() string {
	return m.primary
}
