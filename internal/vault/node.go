// Package vault implements the persistent forest of typed, fielded
// nodes with cross-references, per-owner notification fan-out, and
// transactional mutation (spec.md §4.E), grounded on the field layout
// in the original moulars implementation's vault_node.rs.
//
// The node shape itself (NodeType, Field, Node) lives in internal/model
// so internal/db can depend on it without creating a db<->vault import
// cycle; this file re-exports those names under the vault package,
// which is where SPEC_FULL.md's addenda name them.
package vault

import "github.com/zrax/moulars/internal/model"

type (
	NodeType         = model.NodeType
	StandardNodeKind = model.StandardNodeKind
	Field            = model.Field
	Node             = model.Node
)

const (
	NodeTypeInvalid        = model.NodeTypeInvalid
	NodeTypePlayer         = model.NodeTypePlayer
	NodeTypeAge            = model.NodeTypeAge
	NodeTypeGameServer     = model.NodeTypeGameServer
	NodeTypeFolder         = model.NodeTypeFolder
	NodeTypePlayerInfo     = model.NodeTypePlayerInfo
	NodeTypeSystem         = model.NodeTypeSystem
	NodeTypeImage          = model.NodeTypeImage
	NodeTypeTextNote       = model.NodeTypeTextNote
	NodeTypeSDL            = model.NodeTypeSDL
	NodeTypeAgeLink        = model.NodeTypeAgeLink
	NodeTypeChronicle      = model.NodeTypeChronicle
	NodeTypePlayerInfoList = model.NodeTypePlayerInfoList
	NodeTypeAgeInfo        = model.NodeTypeAgeInfo
	NodeTypeAgeInfoList    = model.NodeTypeAgeInfoList
	NodeTypeMarkerGame     = model.NodeTypeMarkerGame
)

const (
	StandardUserDefined            = model.StandardUserDefined
	StandardInboxFolder            = model.StandardInboxFolder
	StandardBuddyListFolder        = model.StandardBuddyListFolder
	StandardIgnoreListFolder       = model.StandardIgnoreListFolder
	StandardPeopleIKnowAboutFolder = model.StandardPeopleIKnowAboutFolder
	StandardChronicleFolder        = model.StandardChronicleFolder
	StandardAvatarOutfitFolder     = model.StandardAvatarOutfitFolder
	StandardAgeTypeJournalFolder   = model.StandardAgeTypeJournalFolder
	StandardSubAgesFolder          = model.StandardSubAgesFolder
	StandardAgeInstanceSDLNode     = model.StandardAgeInstanceSDLNode
	StandardAgeGlobalSDLNode       = model.StandardAgeGlobalSDLNode
	StandardCanVisitFolder         = model.StandardCanVisitFolder
	StandardAgeOwnersFolder        = model.StandardAgeOwnersFolder
	StandardPlayerInfoNode         = model.StandardPlayerInfoNode
	StandardPublicAgesFolder       = model.StandardPublicAgesFolder
	StandardAgesIOwnFolder         = model.StandardAgesIOwnFolder
	StandardAgesICanVisitFolder    = model.StandardAgesICanVisitFolder
	StandardAgeInfoNode            = model.StandardAgeInfoNode
	StandardSystemNode             = model.StandardSystemNode
	StandardAgeDevicesFolder       = model.StandardAgeDevicesFolder
	StandardGameScoresFolder       = model.StandardGameScoresFolder
)

const (
	FieldInt32_1       = model.FieldInt32_1
	FieldInt32_2       = model.FieldInt32_2
	FieldInt32_3       = model.FieldInt32_3
	FieldInt32_4       = model.FieldInt32_4
	FieldUint32_1      = model.FieldUint32_1
	FieldUint32_2      = model.FieldUint32_2
	FieldUint32_3      = model.FieldUint32_3
	FieldUint32_4      = model.FieldUint32_4
	FieldUUID_1        = model.FieldUUID_1
	FieldUUID_2        = model.FieldUUID_2
	FieldUUID_3        = model.FieldUUID_3
	FieldUUID_4        = model.FieldUUID_4
	FieldString64_1    = model.FieldString64_1
	FieldString64_2    = model.FieldString64_2
	FieldString64_3    = model.FieldString64_3
	FieldString64_4    = model.FieldString64_4
	FieldString64_5    = model.FieldString64_5
	FieldString64_6    = model.FieldString64_6
	FieldIString64_1   = model.FieldIString64_1
	FieldIString64_2   = model.FieldIString64_2
	FieldText_1        = model.FieldText_1
	FieldText_2        = model.FieldText_2
	FieldBlob_1        = model.FieldBlob_1
	FieldBlob_2        = model.FieldBlob_2
	FieldCreateTime    = model.FieldCreateTime
	FieldModifyTime    = model.FieldModifyTime
	FieldCreatorUUID   = model.FieldCreatorUUID
	FieldCreatorIdx    = model.FieldCreatorIdx
	FieldCreateAgeName = model.FieldCreateAgeName
	FieldCreateAgeUUID = model.FieldCreateAgeUUID
	FieldNodeType      = model.FieldNodeType
)

const FirstUserIdx = model.FirstUserIdx

// NewSystemSkeleton returns the standard set of child folders a freshly
// created vault subtree needs for ownerType (SPEC_FULL.md §4.E).
func NewSystemSkeleton(ownerType NodeType) []StandardNodeKind { return model.NewSystemSkeleton(ownerType) }
