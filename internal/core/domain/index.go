package domain

import (
	"strings"
	"time"
)

// DirtyAttr is the per-document boolean attribute inside primary indexes
// meaning "superseded by a delta index; drop this copy from primary
// results". Set on writes and deletes, cleared only by a full rebuild.
const DirtyAttr = "dirty"

// IndexedFlagColumn is the boolean column every indexable table carries.
// Inserts and updates reset it to false; the generated configuration flips
// it to true after a primary build and scopes delta sources to rows where it
// is still false. Declared by the configuration builder, never computed
// here.
const IndexedFlagColumn = "sphinx_primary_indexed"

// DeltaSuffix turns a primary index name into its delta companion's name.
const DeltaSuffix = "_delta"

// IndexDescriptor names one configured index and the registered type whose
// records it covers. An index covers its type and every descendant of it.
type IndexDescriptor struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Delta bool   `json:"delta"`
}

// PrimaryIndexName derives the daemon-side name of a type's primary index.
func PrimaryIndexName(typeName string) string {
	return strings.ToLower(typeName)
}

// DeltaIndexName derives the daemon-side name of a type's delta index.
func DeltaIndexName(typeName string) string {
	return PrimaryIndexName(typeName) + DeltaSuffix
}

// IndexPair builds the primary and delta descriptors for one registered
// type.
func IndexPair(typeName string) (primary IndexDescriptor, delta IndexDescriptor) {
	primary = IndexDescriptor{Name: PrimaryIndexName(typeName), Type: typeName}
	delta = IndexDescriptor{Name: DeltaIndexName(typeName), Type: typeName, Delta: true}
	return primary, delta
}

// IndexNames projects descriptors onto their daemon-side names.
func IndexNames(indexes []IndexDescriptor) []string {
	names := make([]string, len(indexes))
	for i, idx := range indexes {
		names[i] = idx.Name
	}
	return names
}

// FilterDelta keeps only descriptors matching the wanted delta flag.
func FilterDelta(indexes []IndexDescriptor, delta bool) []IndexDescriptor {
	var out []IndexDescriptor
	for _, idx := range indexes {
		if idx.Delta == delta {
			out = append(out, idx)
		}
	}
	return out
}

// DocumentSource is the complete declaration set for one registered type:
// everything the configuration generator needs to render the type's daemon
// source and index blocks.
type DocumentSource struct {
	Type      string               `json:"type"`
	Table     string               `json:"table"`
	BaseID    uint32               `json:"base_id"`
	Fields    []FieldDescriptor    `json:"fields"`
	Relations []RelationDescriptor `json:"relations"`
	Primary   IndexDescriptor      `json:"primary"`
	Delta     []IndexDescriptor    `json:"delta"`
}

// Indexes returns every index declared for the source, primary first.
func (s DocumentSource) Indexes() []IndexDescriptor {
	return append([]IndexDescriptor{s.Primary}, s.Delta...)
}

// IndexConfiguration is the full output of one configuration build, handed
// to the deployer and used to rebuild the topology registry wholesale.
type IndexConfiguration struct {
	Sources []DocumentSource `json:"sources"`
	BuiltAt time.Time        `json:"built_at"`
}

// AllIndexes returns every index in the configuration, in source order.
func (c *IndexConfiguration) AllIndexes() []IndexDescriptor {
	var out []IndexDescriptor
	for _, src := range c.Sources {
		out = append(out, src.Indexes()...)
	}
	return out
}

// DeployResult reports one configuration upload to the indexer agent.
type DeployResult struct {
	Success  bool     `json:"success"`
	Checksum string   `json:"checksum"`
	Indexes  []string `json:"indexes"`
	Message  string   `json:"message,omitempty"`
}
