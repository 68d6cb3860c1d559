package schedule

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a stable 64-bit digest of a schedule and, when non-nil,
// its lane layout. Two pipeline runs over an unchanged snapshot produce the
// same fingerprint, which lets watchers skip redundant re-renders.
func Fingerprint(s Schedule, l *Layout) uint64 {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := xxhash.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}

	for _, id := range ids {
		iv := s[id]
		_, _ = h.WriteString(id)
		_, _ = h.Write([]byte{0})
		writeInt(iv.Start.UnixNano())
		writeInt(iv.End.UnixNano())
		if iv.AllDay {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
		if l != nil {
			lane, ok := l.Lanes[id]
			if !ok {
				lane = -1
			}
			writeInt(int64(lane))
		}
	}
	if l != nil {
		writeInt(int64(l.Count))
	}
	return h.Sum64()
}

// FormatFingerprint renders a fingerprint as 16 hex digits.
func FormatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}
