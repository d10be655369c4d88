package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	V1CellPrefix = "v1/cells"

	V1PathSep        = "/"
	V1ExtSep         = "."
	V1SnapshotExt    = "snap"
	V1SealExt        = "sth" // signed snapshot head
	V1SnapshotFmt    = "%016d.snap"
	V1SealFmt        = "%016d.sth"
	lenUUIDString    = 36
	snapshotsSegment = "snapshots"
	sealsSegment     = "seals"
)

type ObjectType uint8

const (
	ObjectUndefined ObjectType = iota
	ObjectSnapshot
	ObjectSeal
)

// CellPrefix returns the storage prefix of everything stored for a cell.
func CellPrefix(id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/", V1CellPrefix, id)
}

func SnapshotPrefix(id uuid.UUID) string {
	return CellPrefix(id) + snapshotsSegment + V1PathSep
}

func SealPrefix(id uuid.UUID) string {
	return CellPrefix(id) + sealsSegment + V1PathSep
}

// SnapshotPath returns the path of snapshot seq of a cell. The sequence
// number is zero padded so paths sort lexically in commit order.
func SnapshotPath(id uuid.UUID, seq uint32) string {
	return SnapshotPrefix(id) + fmt.Sprintf(V1SnapshotFmt, seq)
}

func SealPath(id uuid.UUID, seq uint32) string {
	return SealPrefix(id) + fmt.Sprintf(V1SealFmt, seq)
}

// ParseCellID extracts the cell uuid from any path below V1CellPrefix.
func ParseCellID(storagePath string) (uuid.UUID, error) {
	prefix := V1CellPrefix + V1PathSep
	i := strings.Index(storagePath, prefix)
	if i == -1 {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrBadPath, storagePath)
	}
	rest := storagePath[i+len(prefix):]
	// the uuid may be followed by a slash or the end of the path
	j := strings.Index(rest, V1PathSep)
	if j == -1 {
		j = len(rest)
	}
	if j != lenUUIDString {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrBadPath, storagePath)
	}
	id, err := uuid.Parse(rest[:j])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s: %v", ErrBadPath, storagePath, err)
	}
	return id, nil
}

// ObjectFromPath returns the kind and sequence number of a snapshot or seal
// path.
func ObjectFromPath(storagePath string) (ObjectType, uint32, error) {
	storagePath = strings.TrimSuffix(storagePath, V1PathSep)
	baseName := storagePath[strings.LastIndex(storagePath, V1PathSep)+1:]

	otypes := []ObjectType{ObjectSnapshot, ObjectSeal}
	for itype, suffix := range []string{V1ExtSep + V1SnapshotExt, V1ExtSep + V1SealExt} {
		if !strings.HasSuffix(baseName, suffix) {
			continue
		}
		seq, err := strconv.ParseUint(baseName[:len(baseName)-len(suffix)], 10, 32)
		if err != nil {
			return ObjectUndefined, 0, fmt.Errorf("%w: %s: %v", ErrBadPath, storagePath, err)
		}
		return otypes[itype], uint32(seq), nil
	}
	return ObjectUndefined, 0, fmt.Errorf("%w: %s has no recognizable object suffix", ErrBadPath, storagePath)
}
