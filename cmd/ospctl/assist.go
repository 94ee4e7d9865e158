package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"ospdriver/osp"
)

// maxPersistedEphemeris bounds the per-file ephemeris record count the way
// the original demo's on-stack array did (12 tracking channels).
const maxPersistedEphemeris = 12

// savePersistedAlmanac writes a downloaded almanac blob verbatim.
func savePersistedAlmanac(filename string, almanac []byte) error {
	return os.WriteFile(filename, almanac, 0o644)
}

// loadPersistedAlmanac reads a previously-saved almanac blob.
func loadPersistedAlmanac(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if len(data) != osp.AlmanacBytes {
		return nil, fmt.Errorf("%s: expected %d bytes, got %d", filename, osp.AlmanacBytes, len(data))
	}
	return data, nil
}

// savePersistedEphemeris writes up to maxPersistedEphemeris records as a
// flat file of fixed-size entries (1 svid byte + 45 big-endian words).
func savePersistedEphemeris(filename string, records []osp.EphemerisRecord) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	n := len(records)
	if n > maxPersistedEphemeris {
		n = maxPersistedEphemeris
	}
	buf := make([]byte, 1+osp.EphemerisWords*2)
	for i := 0; i < n; i++ {
		rec := records[i]
		buf[0] = rec.SVID
		for w, word := range rec.Data {
			binary.BigEndian.PutUint16(buf[1+w*2:], word)
		}
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// loadPersistedEphemeris reads back a file written by savePersistedEphemeris.
func loadPersistedEphemeris(filename string) ([]osp.EphemerisRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	entrySize := 1 + osp.EphemerisWords*2
	if len(data)%entrySize != 0 {
		return nil, fmt.Errorf("%s: size %d is not a multiple of entry size %d", filename, len(data), entrySize)
	}
	count := len(data) / entrySize
	out := make([]osp.EphemerisRecord, count)
	for i := 0; i < count; i++ {
		entry := data[i*entrySize : (i+1)*entrySize]
		out[i].SVID = entry[0]
		for w := 0; w < osp.EphemerisWords; w++ {
			out[i].Data[w] = binary.BigEndian.Uint16(entry[1+w*2:])
		}
	}
	return out, nil
}
