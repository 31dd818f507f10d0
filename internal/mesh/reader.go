package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"boltz/internal/crystal"
)

// Read deserializes mesh data from path. The file is held under a shared
// lock for the duration of the read; decoding failures name the entry that
// could not be decoded.
func Read(path string) (data Data, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh file: %w", err)
	}
	defer file.Close()

	lock := flock.New(path)
	locked, err := lock.TryRLock()
	if err != nil {
		return nil, fmt.Errorf("lock mesh file %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("mesh file %s is locked by another process", path)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("unlock mesh file %s: %w", path, unlockErr)
		}
	}()

	r := bufio.NewReader(file)
	_, count, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	data = make(Data, count)
	for i := uint32(0); i < count; i++ {
		key, spin, value, err := readEntry(r)
		if err != nil {
			return nil, err
		}
		if spin == SpinNone {
			if _, exists := data[key]; exists {
				return nil, fmt.Errorf("duplicate entry %s", key)
			}
			data[key] = value
			continue
		}
		spun, ok := data[key].(BySpin)
		if !ok {
			if _, exists := data[key]; exists {
				return nil, fmt.Errorf("entry %s mixes spin and plain values", key)
			}
			spun = make(BySpin, 2)
			data[key] = spun
		}
		if _, exists := spun[spin]; exists {
			return nil, fmt.Errorf("duplicate entry %s (spin %s)", key, spin)
		}
		spun[spin] = value
	}
	return data, nil
}

func readHeader(r io.Reader) (uuid.UUID, uint32, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return uuid.UUID{}, 0, fmt.Errorf("read header: %w", err)
	}
	if magic != containerMagic {
		return uuid.UUID{}, 0, fmt.Errorf("not a mesh container: bad signature")
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return uuid.UUID{}, 0, fmt.Errorf("read header: %w", err)
	}
	if version != containerVersion {
		return uuid.UUID{}, 0, fmt.Errorf("unsupported container version %d", version)
	}
	var id uuid.UUID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return uuid.UUID{}, 0, fmt.Errorf("read header: %w", err)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return uuid.UUID{}, 0, fmt.Errorf("read header: %w", err)
	}
	return id, count, nil
}

func readEntry(r io.Reader) (string, Spin, Value, error) {
	var keyLen uint16
	if err := binary.Read(r, binary.LittleEndian, &keyLen); err != nil {
		return "", SpinNone, nil, fmt.Errorf("read entry: %w", err)
	}
	keyBytes := make([]byte, keyLen)
	if _, err := io.ReadFull(r, keyBytes); err != nil {
		return "", SpinNone, nil, fmt.Errorf("read entry: %w", err)
	}
	key := string(keyBytes)

	var tags [2]byte
	if _, err := io.ReadFull(r, tags[:]); err != nil {
		return "", SpinNone, nil, entryReadErr(key, err)
	}
	spin := Spin(tags[0])
	if spin > SpinDown {
		return "", SpinNone, nil, fmt.Errorf("entry %s: invalid spin tag %d", key, tags[0])
	}

	value, err := readValue(r, key, entryKind(tags[1]))
	if err != nil {
		return "", SpinNone, nil, err
	}
	return key, spin, value, nil
}

func readValue(r io.Reader, key string, kind entryKind) (Value, error) {
	switch kind {
	case kindFloatArray:
		dims, raw, err := readArray(r)
		if err != nil {
			return nil, entryReadErr(key, err)
		}
		data := make([]float64, len(raw)/8)
		for i := range data {
			data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		}
		value, err := NewArray(dims, data)
		if err != nil {
			return nil, entryReadErr(key, err)
		}
		return value, nil
	case kindIntArray:
		dims, raw, err := readArray(r)
		if err != nil {
			return nil, entryReadErr(key, err)
		}
		data := make([]int64, len(raw)/8)
		for i := range data {
			data[i] = int64(binary.LittleEndian.Uint64(raw[8*i:]))
		}
		if n := dimsLen(dims); n != len(data) {
			return nil, fmt.Errorf("entry %s: dims %v describe %d elements, payload has %d", key, dims, n, len(data))
		}
		return &IntArray{Dims: dims, Data: data}, nil
	case kindText:
		labels, err := readText(r)
		if err != nil {
			return nil, entryReadErr(key, err)
		}
		return labels, nil
	case kindFloat:
		var v float64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, entryReadErr(key, err)
		}
		return Float(v), nil
	case kindInt:
		var v int64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, entryReadErr(key, err)
		}
		return Int(v), nil
	case kindBool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, entryReadErr(key, err)
		}
		// Containers written before the tagged format marked an unknown
		// valence-band index with a bare false scalar.
		if key == "vb_idx" && b[0] == 0 {
			return Absent{}, nil
		}
		return Bool(b[0] != 0), nil
	case kindString:
		raw, err := readBlob(r)
		if err != nil {
			return nil, entryReadErr(key, err)
		}
		return String(raw), nil
	case kindAbsent:
		return Absent{}, nil
	case kindStructure:
		raw, err := readBlob(r)
		if err != nil {
			return nil, entryReadErr(key, err)
		}
		structure, err := crystal.FromJSON(raw)
		if err != nil {
			return nil, entryReadErr(key, err)
		}
		return StructureValue{Structure: structure}, nil
	default:
		return nil, fmt.Errorf("entry %s: unknown entry kind %d", key, kind)
	}
}

func entryReadErr(key string, err error) error {
	return fmt.Errorf("entry %s: %w", key, err)
}

func readArray(r io.Reader) ([]int, []byte, error) {
	dims, compressedLen, err := readArrayHeader(r)
	if err != nil {
		return nil, nil, err
	}
	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, nil, err
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, nil, err
	}
	raw := make([]byte, 8*dimsLen(dims))
	if _, err := io.ReadFull(zr, raw); err != nil {
		return nil, nil, err
	}
	if err := zr.Close(); err != nil {
		return nil, nil, err
	}
	return dims, raw, nil
}

func readArrayHeader(r io.Reader) ([]int, uint64, error) {
	var rank [1]byte
	if _, err := io.ReadFull(r, rank[:]); err != nil {
		return nil, 0, err
	}
	dims := make([]int, rank[0])
	for i := range dims {
		var d uint32
		if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
			return nil, 0, err
		}
		dims[i] = int(d)
	}
	var compressedLen uint64
	if err := binary.Read(r, binary.LittleEndian, &compressedLen); err != nil {
		return nil, 0, err
	}
	return dims, compressedLen, nil
}

func readText(r io.Reader) (Text, error) {
	var slot uint16
	if err := binary.Read(r, binary.LittleEndian, &slot); err != nil {
		return nil, err
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	labels := make(Text, count)
	buf := make([]byte, slot)
	for i := range labels {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		labels[i] = string(bytes.TrimRight(buf, "\x00"))
	}
	return labels, nil
}

func readBlob(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
