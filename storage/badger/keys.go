package badger

import (
	"fmt"
	"strings"
)

// Key prefixes for different data types
const (
	catalogEntryPrefix = "icdrec:"
	labelRecordPrefix  = "lblrec:"
)

// makeCatalogKey generates a key for a catalog entry by code.
// Keys sort in code order.
func makeCatalogKey(code string) []byte {
	return []byte(catalogEntryPrefix + strings.TrimSpace(code))
}

// makeLabelKey generates a key for a label mapping by drug name.
// Names are folded to lower case so lookups ignore case.
func makeLabelKey(drug string) []byte {
	return []byte(labelRecordPrefix + strings.ToLower(strings.TrimSpace(drug)))
}

// makeCheckpointKey generates a key for load checkpoints.
func makeCheckpointKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", name))
}
