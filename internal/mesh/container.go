package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

// Container framing. Every multi-byte field is little-endian. The layout is
//
//	magic[8] version:u16 uuid[16] count:u32
//	count x { keylen:u16 key spin:u8 kind:u8 payload }
//
// Array payloads are gzip streams of the raw element bytes, length-prefixed
// so entries can be skipped without decompression.
var containerMagic = [8]byte{0x89, 'B', 'M', 'C', '\r', '\n', 0x1a, '\n'}

const containerVersion uint16 = 1

// textSlotWidth is the minimum fixed slot width for text entries. Wider
// slots are used when a label exceeds it.
const textSlotWidth = 13

// Write serializes mesh data to path, replacing any existing file. The file
// is held under an exclusive lock for the duration of the write and the lock
// is released on every exit path.
func Write(data Data, path string) (err error) {
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock mesh file %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("mesh file %s is locked by another process", path)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("unlock mesh file %s: %w", path, unlockErr)
		}
	}()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mesh file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := writeHeader(w, data); err != nil {
		return err
	}
	if err := writeEntries(w, data); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write mesh file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close mesh file: %w", err)
	}
	return nil
}

func writeHeader(w io.Writer, data Data) error {
	if _, err := w.Write(containerMagic[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, containerVersion); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	id := uuid.New()
	if _, err := w.Write(id[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	count := 0
	for _, value := range data {
		if spun, ok := value.(BySpin); ok {
			count += len(spun)
		} else {
			count++
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(count)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func writeEntries(w io.Writer, data Data) error {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch value := data[key].(type) {
		case BySpin:
			spins := make([]Spin, 0, len(value))
			for spin := range value {
				spins = append(spins, spin)
			}
			sort.Slice(spins, func(i, j int) bool { return spins[i] < spins[j] })
			for _, spin := range spins {
				if spin == SpinNone {
					return fmt.Errorf("entry %s: spin mapping contains no-spin channel", key)
				}
				if _, nested := value[spin].(BySpin); nested {
					return fmt.Errorf("entry %s: nested spin mapping", key)
				}
				if err := writeEntry(w, key, spin, value[spin]); err != nil {
					return err
				}
			}
		default:
			if err := writeEntry(w, key, SpinNone, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeEntry(w io.Writer, key string, spin Spin, value Value) error {
	if value == nil {
		value = Absent{}
	}
	if len(key) > math.MaxUint16 {
		return fmt.Errorf("entry key too long: %d bytes", len(key))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(key))); err != nil {
		return entryErr(key, err)
	}
	if _, err := io.WriteString(w, key); err != nil {
		return entryErr(key, err)
	}
	if _, err := w.Write([]byte{byte(spin), byte(value.kind())}); err != nil {
		return entryErr(key, err)
	}

	switch v := value.(type) {
	case *Array:
		raw := make([]byte, 8*len(v.Data))
		for i, f := range v.Data {
			binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(f))
		}
		return entryErr(key, writeArray(w, v.Dims, raw))
	case *IntArray:
		raw := make([]byte, 8*len(v.Data))
		for i, n := range v.Data {
			binary.LittleEndian.PutUint64(raw[8*i:], uint64(n))
		}
		return entryErr(key, writeArray(w, v.Dims, raw))
	case Text:
		return entryErr(key, writeText(w, v))
	case Float:
		return entryErr(key, binary.Write(w, binary.LittleEndian, float64(v)))
	case Int:
		return entryErr(key, binary.Write(w, binary.LittleEndian, int64(v)))
	case Bool:
		b := byte(0)
		if v {
			b = 1
		}
		_, err := w.Write([]byte{b})
		return entryErr(key, err)
	case String:
		return entryErr(key, writeBlob(w, []byte(v)))
	case Absent:
		return nil
	case StructureValue:
		raw, err := v.Structure.ToJSON()
		if err != nil {
			return entryErr(key, err)
		}
		return entryErr(key, writeBlob(w, raw))
	default:
		return fmt.Errorf("entry %s: unsupported value type %T", key, value)
	}
}

func entryErr(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("entry %s: %w", key, err)
}

// writeArray stores the dims followed by a length-prefixed gzip stream of
// the raw element bytes. Arrays are the only compressed payload.
func writeArray(w io.Writer, dims []int, raw []byte) error {
	if len(dims) > math.MaxUint8 {
		return fmt.Errorf("array rank %d too large", len(dims))
	}
	if _, err := w.Write([]byte{byte(len(dims))}); err != nil {
		return err
	}
	for _, d := range dims {
		if d < 0 || int64(d) > math.MaxUint32 {
			return fmt.Errorf("array dimension %d out of range", d)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(d)); err != nil {
			return err
		}
	}

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(raw); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(compressed.Len())); err != nil {
		return err
	}
	_, err := w.Write(compressed.Bytes())
	return err
}

// writeText stores labels in fixed-width NUL-padded slots. The slot width is
// recorded so decoding does not depend on a convention.
func writeText(w io.Writer, labels Text) error {
	slot := textSlotWidth
	for _, label := range labels {
		if len(label) > slot {
			slot = len(label)
		}
	}
	if slot > math.MaxUint16 {
		return fmt.Errorf("text label too long: %d bytes", slot)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(slot)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(labels))); err != nil {
		return err
	}
	buf := make([]byte, slot)
	for _, label := range labels {
		for i := range buf {
			buf[i] = 0
		}
		copy(buf, label)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func writeBlob(w io.Writer, raw []byte) error {
	if int64(len(raw)) > math.MaxUint32 {
		return fmt.Errorf("blob too large: %d bytes", len(raw))
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(raw))); err != nil {
		return err
	}
	_, err := w.Write(raw)
	return err
}
