package auth

import (
	"bytes"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/wire"
)

// AgeInfo is the public-age-browser record GetPublicAgeList replies
// with, one per discovered AgeInfo vault node (DESIGN.md "NetAgeInfo
// wire codec"). Grounded on
// original_source/src/auth_srv/age_info.rs's NetAgeInfo, which carries
// the same filename/instance-name/user-name/description quartet at
// fixed widths so the client can lay it out without a length prefix;
// the exact field order here is this package's own.
type AgeInfo struct {
	InstanceID  uuid.UUID
	AgeFilename string
	InstanceName string
	UserName    string
	Description string
	SequenceNumber uint32
	Language       int32
	PopulationCount int32
}

const (
	ageFilenameWidth  = 64
	ageNameWidth      = 64
	ageDescWidth      = 1024
)

// EncodeAgeInfo appends one fixed-width NetAgeInfo record to w.
func EncodeAgeInfo(w *wire.Writer, info AgeInfo) error {
	if err := w.WriteUUID(info.InstanceID); err != nil {
		return err
	}
	if err := writeFixedUTF16(w, info.AgeFilename, ageFilenameWidth); err != nil {
		return err
	}
	if err := writeFixedUTF16(w, info.InstanceName, ageNameWidth); err != nil {
		return err
	}
	if err := writeFixedUTF16(w, info.UserName, ageNameWidth); err != nil {
		return err
	}
	if err := writeFixedUTF16(w, info.Description, ageDescWidth); err != nil {
		return err
	}
	if err := w.WriteUint32(info.SequenceNumber); err != nil {
		return err
	}
	if err := w.WriteInt32(info.Language); err != nil {
		return err
	}
	return w.WriteInt32(info.PopulationCount)
}

// DecodeAgeInfo reads one fixed-width NetAgeInfo record from r.
func DecodeAgeInfo(r *wire.Reader) (AgeInfo, error) {
	var info AgeInfo
	id, err := r.ReadUUID()
	if err != nil {
		return info, err
	}
	info.InstanceID = id
	if info.AgeFilename, err = readFixedUTF16(r, ageFilenameWidth); err != nil {
		return info, err
	}
	if info.InstanceName, err = readFixedUTF16(r, ageNameWidth); err != nil {
		return info, err
	}
	if info.UserName, err = readFixedUTF16(r, ageNameWidth); err != nil {
		return info, err
	}
	if info.Description, err = readFixedUTF16(r, ageDescWidth); err != nil {
		return info, err
	}
	if info.SequenceNumber, err = r.ReadUint32(); err != nil {
		return info, err
	}
	if info.Language, err = r.ReadInt32(); err != nil {
		return info, err
	}
	info.PopulationCount, err = r.ReadInt32()
	return info, err
}

// EncodeAgeInfoList packs infos into the flat buffer PublicAgeList's
// "ages" field carries, since the Auth channel has no repeated-struct
// field kind any more than VaultNodeRefsFetched does.
func EncodeAgeInfoList(infos []AgeInfo) ([]byte, error) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	for _, info := range infos {
		if err := EncodeAgeInfo(w, info); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// writeFixedUTF16 writes exactly width UTF-16 code units: s truncated if
// it overflows width-1 code units, null-padded otherwise (always
// leaving room for the terminating zero, matching a C client's
// wchar_t[width] buffer convention).
func writeFixedUTF16(w *wire.Writer, s string, width int) error {
	units := utf16.Encode([]rune(s))
	if len(units) > width-1 {
		units = units[:width-1]
	}
	for _, u := range units {
		if err := w.WriteUint16(u); err != nil {
			return err
		}
	}
	for i := len(units); i < width; i++ {
		if err := w.WriteUint16(0); err != nil {
			return err
		}
	}
	return nil
}

// readFixedUTF16 reads exactly width UTF-16 code units and returns the
// string up to (not including) the first null.
func readFixedUTF16(r *wire.Reader, width int) (string, error) {
	units := make([]uint16, width)
	for i := range units {
		u, err := r.ReadUint16()
		if err != nil {
			return "", err
		}
		units[i] = u
	}
	for i, u := range units {
		if u == 0 {
			units = units[:i]
			break
		}
	}
	return string(utf16.Decode(units)), nil
}
