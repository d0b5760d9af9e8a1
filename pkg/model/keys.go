package model

import "encoding/binary"

// Database Key Namespace Design
// ==============================
//
// The store collaborator is a flat key-value space, so every entity family
// gets its own key prefix. Prefixed keys prevent collisions between
// families, make point lookups O(1), and let prefix scans serve the range
// queries the engine needs (children of a container, chunks of an object,
// rows for a term).
//
// Family                 Prefix   Key Format                         Value
// =========================================================================
// Collections            "col:"   col:<container>\x00<name>          Collection (JSON)
// Resources              "res:"   res:<container>\x00<name>          Resource (JSON)
// ID Index               "idx:"   idx:<id>                           IDEntry (JSON)
// Object Headers         "objh:"  objh:<id>                          ObjectHeader (JSON)
// Object Chunks          "objc:"  objc:<id>\x00<seq, 8-byte BE>      Chunk (JSON)
// Search by Term         "st:"    st:<term>\x00<rowid>               SearchRow (JSON)
// Search by Object       "so:"    so:<objectid>\x00<rowid>           term-row key (bytes)
// Groups                 "grp:"   grp:<gid>                          Group (JSON)
//
// The NUL separator is safe because names and identifiers never contain
// NUL, while container paths do contain the ':' and '/' characters that a
// textual separator would collide with. Chunk sequence numbers are encoded
// big-endian so that lexicographic key order equals numeric chunk order,
// which is what makes the chunk prefix scan yield blocks in sequence.
//
// The collection and resource families double as the children index: all
// direct children of container P live under the prefix "col:P\x00" (resp.
// "res:P\x00"), so listing a container is one prefix scan per family with
// no descendant leakage ("/a" and "/a/b" have different container fields).

const (
	prefixCollection   = "col:"
	prefixResource     = "res:"
	prefixIDIndex      = "idx:"
	prefixObjectHeader = "objh:"
	prefixObjectChunk  = "objc:"
	prefixSearchTerm   = "st:"
	prefixSearchObject = "so:"
	prefixGroup        = "grp:"

	keySep = "\x00"
)

// keyCollection generates the primary key for a collection row.
func keyCollection(container, name string) []byte {
	return []byte(prefixCollection + container + keySep + name)
}

// keyCollectionChildren generates the scan prefix for all collections whose
// container is exactly the given path.
func keyCollectionChildren(container string) []byte {
	return []byte(prefixCollection + container + keySep)
}

// keyResource generates the primary key for a resource row.
func keyResource(container, name string) []byte {
	return []byte(prefixResource + container + keySep + name)
}

// keyResourceChildren generates the scan prefix for all resources whose
// container is exactly the given path.
func keyResourceChildren(container string) []byte {
	return []byte(prefixResource + container + keySep)
}

// keyIDIndex generates the key for an id-index entry.
func keyIDIndex(id string) []byte {
	return []byte(prefixIDIndex + id)
}

// keyObjectHeader generates the key for a data object's shared header.
func keyObjectHeader(id string) []byte {
	return []byte(prefixObjectHeader + id)
}

// keyObjectChunk generates the key for one chunk of a data object.
func keyObjectChunk(id string, sequence uint64) []byte {
	key := make([]byte, 0, len(prefixObjectChunk)+len(id)+1+8)
	key = append(key, prefixObjectChunk...)
	key = append(key, id...)
	key = append(key, 0x00)
	key = binary.BigEndian.AppendUint64(key, sequence)
	return key
}

// keyObjectChunkPrefix generates the scan prefix for all chunks of an object.
func keyObjectChunkPrefix(id string) []byte {
	return []byte(prefixObjectChunk + id + keySep)
}

// keySearchTerm generates the key for one term-index row.
func keySearchTerm(term, rowID string) []byte {
	return []byte(prefixSearchTerm + term + keySep + rowID)
}

// keySearchTermPrefix generates the scan prefix for all rows of a term.
func keySearchTermPrefix(term string) []byte {
	return []byte(prefixSearchTerm + term + keySep)
}

// keySearchObject generates the reverse-index key from an indexed object to
// one of its term rows. The value is the term-row key, so reset-by-object
// can delete both sides without a full scan.
func keySearchObject(objectID, rowID string) []byte {
	return []byte(prefixSearchObject + objectID + keySep + rowID)
}

// keySearchObjectPrefix generates the scan prefix for an object's term rows.
func keySearchObjectPrefix(objectID string) []byte {
	return []byte(prefixSearchObject + objectID + keySep)
}

// keyGroup generates the key for a group row.
func keyGroup(gid string) []byte {
	return []byte(prefixGroup + gid)
}
