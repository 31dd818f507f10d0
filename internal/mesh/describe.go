package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// EntryInfo summarizes one stored entry without decoding its payload.
type EntryInfo struct {
	Key         string
	Spin        Spin
	Kind        string
	Dims        []int
	StoredBytes int64
}

// FileInfo summarizes a mesh container.
type FileInfo struct {
	Path    string
	ID      uuid.UUID
	Version uint16
	Entries []EntryInfo
}

// Describe reads container metadata, skipping entry payloads. Array entries
// report their stored (compressed) size.
func Describe(path string) (*FileInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh file: %w", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	id, count, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	info := &FileInfo{Path: path, ID: id, Version: containerVersion, Entries: make([]EntryInfo, 0, count)}
	for i := uint32(0); i < count; i++ {
		entry, err := describeEntry(r)
		if err != nil {
			return nil, err
		}
		info.Entries = append(info.Entries, entry)
	}
	return info, nil
}

func describeEntry(r *bufio.Reader) (EntryInfo, error) {
	var keyLen uint16
	if err := binary.Read(r, binary.LittleEndian, &keyLen); err != nil {
		return EntryInfo{}, fmt.Errorf("read entry: %w", err)
	}
	keyBytes := make([]byte, keyLen)
	if _, err := io.ReadFull(r, keyBytes); err != nil {
		return EntryInfo{}, fmt.Errorf("read entry: %w", err)
	}
	key := string(keyBytes)

	var tags [2]byte
	if _, err := io.ReadFull(r, tags[:]); err != nil {
		return EntryInfo{}, entryReadErr(key, err)
	}
	kind := entryKind(tags[1])
	entry := EntryInfo{Key: key, Spin: Spin(tags[0]), Kind: kind.String()}

	var skip int64
	switch kind {
	case kindFloatArray, kindIntArray:
		dims, compressedLen, err := readArrayHeader(r)
		if err != nil {
			return EntryInfo{}, entryReadErr(key, err)
		}
		entry.Dims = dims
		skip = int64(compressedLen)
	case kindText:
		var slot uint16
		if err := binary.Read(r, binary.LittleEndian, &slot); err != nil {
			return EntryInfo{}, entryReadErr(key, err)
		}
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return EntryInfo{}, entryReadErr(key, err)
		}
		entry.Dims = []int{int(count)}
		skip = int64(slot) * int64(count)
	case kindFloat, kindInt:
		skip = 8
	case kindBool:
		skip = 1
	case kindString, kindStructure:
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return EntryInfo{}, entryReadErr(key, err)
		}
		skip = int64(length)
	case kindAbsent:
		skip = 0
	default:
		return EntryInfo{}, fmt.Errorf("entry %s: unknown entry kind %d", key, kind)
	}

	entry.StoredBytes = skip
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return EntryInfo{}, entryReadErr(key, err)
	}
	return entry, nil
}
