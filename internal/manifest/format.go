package manifest

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"unicode/utf16"
)

// Encode renders m in the wire manifest format (spec.md §4.G): UTF-16LE,
// comma-separated fields, each record null-terminated. Deleted entries
// are omitted — clients never need to download something that no
// longer exists, and the cache keeps the DELETED record around
// server-side so a later Scan doesn't re-announce it as new.
func (m *Manifest) Encode() []byte {
	var text []rune
	for _, e := range m.Entries {
		if e.IsDeleted() {
			continue
		}
		record := fmt.Sprintf("%s,%s,%s,%s,%d,%d,%d",
			e.ClientPath, e.DownloadPath,
			hex.EncodeToString(e.SourceHash[:]), hex.EncodeToString(e.DownloadHash[:]),
			e.SourceSize, e.DownloadSize, uint32(e.Flags))
		text = append(text, []rune(record)...)
		text = append(text, 0)
	}

	units := utf16.Encode(text)
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out
}
