package domain

import (
	"fmt"
	"hash/crc32"
	"math"
)

// crcTable is pre-computed once. Document identity must be stable across
// processes and restarts, so the polynomial is pinned to IEEE.
var crcTable = crc32.MakeTable(crc32.IEEE)

// DocumentID is the daemon-side identifier of one record: the 32-bit hash of
// the record's base type name in the high word, the record's numeric ID in
// the low word. All subtypes of one base type share a single ID namespace.
type DocumentID uint64

// BaseID returns the stable 32-bit hash of a base type name.
//
// Design assumption, not a guarantee: distinct base types in one deployment
// do not share a hash bucket. A collision would merge two ID namespaces; the
// configuration builder warns when it detects one among registered types.
func BaseID(baseType string) uint32 {
	return crc32.Checksum([]byte(baseType), crcTable)
}

// NewDocumentID encodes (base type, record ID) into a DocumentID. The record
// ID must be positive and fit in 32 bits; anything else is a caller error and
// never reaches the search daemon.
func NewDocumentID(baseType string, recordID int64) (DocumentID, error) {
	if recordID <= 0 {
		return 0, fmt.Errorf("%w: record id %d is not positive", ErrInvalidInput, recordID)
	}
	if recordID > math.MaxUint32 {
		return 0, fmt.Errorf("%w: record id %d does not fit in 32 bits", ErrInvalidInput, recordID)
	}
	return DocumentID(uint64(BaseID(baseType))<<32 | uint64(recordID)), nil
}

// Decode splits the ID back into its base-type hash and record number.
func (d DocumentID) Decode() (baseID uint32, recordID uint32) {
	return uint32(d >> 32), uint32(d)
}

// BaseID returns the base-type hash half of the ID.
func (d DocumentID) BaseID() uint32 { return uint32(d >> 32) }

// RecordID returns the record-number half of the ID.
func (d DocumentID) RecordID() uint32 { return uint32(d) }

func (d DocumentID) String() string {
	return fmt.Sprintf("%d", uint64(d))
}
