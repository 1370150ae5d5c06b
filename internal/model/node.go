package model

import (
	"time"

	"github.com/google/uuid"
)

// NodeType is the fixed enum tag a vault node carries (spec.md §3.2). It
// is immutable after creation (invariant i). Defined in model rather
// than in the vault package so db can depend on the node shape without
// creating an import cycle with vault's higher-level Store.
type NodeType int32

const (
	NodeTypeInvalid NodeType = iota
	NodeTypePlayer
	NodeTypeAge
	NodeTypeGameServer
	NodeTypeFolder
	NodeTypePlayerInfo
	NodeTypeSystem
	NodeTypeImage
	NodeTypeTextNote
	NodeTypeSDL
	NodeTypeAgeLink
	NodeTypeChronicle
	NodeTypePlayerInfoList
	NodeTypeAgeInfo
	NodeTypeAgeInfoList
	NodeTypeMarkerGame
)

// StandardNodeKind names a well-known system/sentinel node purpose
// (spec.md §3.2's "sentinel/system nodes", idx < 10000), carried from
// the original implementation's StandardNode enum (SPEC_FULL.md
// "StandardNode sentinel enumeration").
type StandardNodeKind int32

const (
	StandardUserDefined StandardNodeKind = iota
	StandardInboxFolder
	StandardBuddyListFolder
	StandardIgnoreListFolder
	StandardPeopleIKnowAboutFolder
	StandardChronicleFolder
	StandardAvatarOutfitFolder
	StandardAgeTypeJournalFolder
	StandardSubAgesFolder
	StandardAgeInstanceSDLNode
	StandardAgeGlobalSDLNode
	StandardCanVisitFolder
	StandardAgeOwnersFolder
	StandardPlayerInfoNode
	StandardPublicAgesFolder
	StandardAgesIOwnFolder
	StandardAgesICanVisitFolder
	StandardAgeInfoNode
	StandardSystemNode
	StandardAgeDevicesFolder
	StandardGameScoresFolder
)

// NewSystemSkeleton returns the standard set of child folders a freshly
// created vault subtree needs for ownerType (SPEC_FULL.md §4.E "Vault —
// default folder skeleton"). Only NodeTypePlayer and NodeTypeAge have a
// defined skeleton; any other owner type gets none, since spec.md never
// describes a system node needing one.
func NewSystemSkeleton(ownerType NodeType) []StandardNodeKind {
	switch ownerType {
	case NodeTypePlayer:
		return []StandardNodeKind{
			StandardInboxFolder, StandardBuddyListFolder, StandardIgnoreListFolder,
			StandardPeopleIKnowAboutFolder, StandardChronicleFolder,
			StandardAvatarOutfitFolder, StandardAgeTypeJournalFolder,
			StandardSubAgesFolder, StandardAgesIOwnFolder, StandardAgesICanVisitFolder,
			StandardPlayerInfoNode, StandardGameScoresFolder,
		}
	case NodeTypeAge:
		return []StandardNodeKind{
			StandardAgeOwnersFolder, StandardCanVisitFolder, StandardAgeDevicesFolder,
			StandardAgeInstanceSDLNode, StandardAgeGlobalSDLNode, StandardAgeInfoNode,
			StandardPublicAgesFolder,
		}
	default:
		return nil
	}
}

// FirstUserIdx is the smallest non-reserved, dynamically-assignable node
// index (spec.md §3.2, §6.2 "Node idx autoincrement begins at 10000").
const FirstUserIdx = 10000

// Field is one bit of a node's field bitmap (spec.md §3.2). There are up
// to four each of int32/uint32/uuid, six string(<=64), two
// case-insensitive string(<=64), two long text, and two byte blobs.
type Field uint64

const (
	FieldInt32_1 Field = 1 << iota
	FieldInt32_2
	FieldInt32_3
	FieldInt32_4
	FieldUint32_1
	FieldUint32_2
	FieldUint32_3
	FieldUint32_4
	FieldUUID_1
	FieldUUID_2
	FieldUUID_3
	FieldUUID_4
	FieldString64_1
	FieldString64_2
	FieldString64_3
	FieldString64_4
	FieldString64_5
	FieldString64_6
	FieldIString64_1
	FieldIString64_2
	FieldText_1
	FieldText_2
	FieldBlob_1
	FieldBlob_2
	FieldCreateTime
	FieldModifyTime
	FieldCreatorUUID
	FieldCreatorIdx
	FieldCreateAgeName
	FieldCreateAgeUUID
	FieldNodeType
)

// Node is a heterogeneous vault record (spec.md §3.2). Only fields whose
// bit is set in Fields are semantically present; the zero value of an
// unset field must never be compared as if it were present (invariant
// ii).
type Node struct {
	Idx      uint32
	Fields   Field
	NodeType NodeType

	CreateTime    time.Time
	ModifyTime    time.Time
	CreatorUUID   uuid.UUID
	CreatorIdx    uint32
	CreateAgeName string
	CreateAgeUUID uuid.UUID

	Int32   [4]int32
	Uint32  [4]uint32
	UUID    [4]uuid.UUID
	String  [6]string // <=64 chars, case-sensitive
	IString [2]string // <=64 chars, case-insensitive
	Text    [2]string // long text, no length cap
	Blob    [2][]byte
}

// Has reports whether f is set in the node's field bitmap.
func (n *Node) Has(f Field) bool { return n.Fields&f != 0 }

func (n *Node) set(f Field) { n.Fields |= f }

// SetInt32 sets int32 slot i (1-4) and marks it present.
func (n *Node) SetInt32(i int, v int32) {
	n.Int32[i-1] = v
	n.set(FieldInt32_1 << uint(i-1))
}

// Int32At returns slot i's value and whether it is present.
func (n *Node) Int32At(i int) (int32, bool) {
	return n.Int32[i-1], n.Has(FieldInt32_1 << uint(i-1))
}

// SetUint32 sets uint32 slot i (1-4) and marks it present.
func (n *Node) SetUint32(i int, v uint32) {
	n.Uint32[i-1] = v
	n.set(FieldUint32_1 << uint(i-1))
}

func (n *Node) Uint32At(i int) (uint32, bool) {
	return n.Uint32[i-1], n.Has(FieldUint32_1 << uint(i-1))
}

// SetUUID sets uuid slot i (1-4) and marks it present.
func (n *Node) SetUUID(i int, v uuid.UUID) {
	n.UUID[i-1] = v
	n.set(FieldUUID_1 << uint(i-1))
}

func (n *Node) UUIDAt(i int) (uuid.UUID, bool) {
	return n.UUID[i-1], n.Has(FieldUUID_1 << uint(i-1))
}

// SetString sets string slot i (1-6, <=64 bytes) and marks it present.
func (n *Node) SetString(i int, v string) {
	n.String[i-1] = v
	n.set(FieldString64_1 << uint(i-1))
}

func (n *Node) StringAt(i int) (string, bool) {
	return n.String[i-1], n.Has(FieldString64_1 << uint(i-1))
}

// SetIString sets case-insensitive string slot i (1-2) and marks it
// present.
func (n *Node) SetIString(i int, v string) {
	n.IString[i-1] = v
	n.set(FieldIString64_1 << uint(i-1))
}

func (n *Node) IStringAt(i int) (string, bool) {
	return n.IString[i-1], n.Has(FieldIString64_1 << uint(i-1))
}

// SetText sets long-text slot i (1-2) and marks it present.
func (n *Node) SetText(i int, v string) {
	n.Text[i-1] = v
	n.set(FieldText_1 << uint(i-1))
}

func (n *Node) TextAt(i int) (string, bool) {
	return n.Text[i-1], n.Has(FieldText_1 << uint(i-1))
}

// SetBlob sets blob slot i (1-2) and marks it present.
func (n *Node) SetBlob(i int, v []byte) {
	n.Blob[i-1] = v
	n.set(FieldBlob_1 << uint(i-1))
}

func (n *Node) BlobAt(i int) ([]byte, bool) {
	return n.Blob[i-1], n.Has(FieldBlob_1 << uint(i-1))
}

// Clone returns a deep-enough copy of n for safe mutation (used by
// CreateNode/SaveNode to never let a caller's in-flight struct alias
// what the store holds).
func (n *Node) Clone() *Node {
	c := *n
	c.Blob[0] = append([]byte(nil), n.Blob[0]...)
	c.Blob[1] = append([]byte(nil), n.Blob[1]...)
	return &c
}
