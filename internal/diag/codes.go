package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// IO and configuration
	IOInfo           Code = 4000
	IOReadFailed     Code = 4001
	IOWriteFailed    Code = 4002
	CfgBadManifest   Code = 4100
	CfgUnknownTarget Code = 4101
	CfgUnknownEmit   Code = 4102

	// Internal invariant violations of the lowering pass
	LowerInfo                  Code = 5000
	LowerMissingArgBuffer      Code = 5001 // declared arg tensor has no buffer after allocation
	LowerNilStoreTarget        Code = 5002 // store statement writes to no tensor
	LowerStoreBufferUnresolved Code = 5003 // store target has no buffer
	LowerDuplicateScalar       Code = 5004
	LowerInvalidScalarType     Code = 5005
	LowerArgLookupFailed       Code = 5006 // seen buffer name missing from the arg list
	LowerCyclicGroup           Code = 5007
	LowerBufferAllocFailed     Code = 5008

	// Tensor group files
	GroupInfo              Code = 6000
	GroupSyntax            Code = 6001
	GroupDuplicateTensor   Code = 6002
	GroupUnknownTensor     Code = 6003
	GroupBadExpr           Code = 6004
	GroupBadKind           Code = 6005
	GroupBadType           Code = 6006
	GroupBadMemory         Code = 6007
	GroupAxesMismatch      Code = 6008
	GroupMissingFunction   Code = 6009
	GroupDuplicateArgument Code = 6010
)

var codeDescription = map[Code]string{
	UnknownCode:      "Unknown error",
	IOInfo:           "I/O information",
	IOReadFailed:     "Failed to read file",
	IOWriteFailed:    "Failed to write file",
	CfgBadManifest:   "Invalid project manifest",
	CfgUnknownTarget: "Unknown target architecture",
	CfgUnknownEmit:   "Unknown emit format",

	LowerInfo:                  "Lowering information",
	LowerMissingArgBuffer:      "Argument tensor has no buffer after allocation",
	LowerNilStoreTarget:        "Store statement has no target tensor",
	LowerStoreBufferUnresolved: "Store target has no buffer",
	LowerDuplicateScalar:       "Duplicate scalar argument",
	LowerInvalidScalarType:     "Scalar argument has an invalid type",
	LowerArgLookupFailed:       "Argument recorded but not found",
	LowerCyclicGroup:           "Tensor group has a dependency cycle",
	LowerBufferAllocFailed:     "Buffer allocation failed",

	GroupInfo:              "Tensor group information",
	GroupSyntax:            "Malformed tensor group file",
	GroupDuplicateTensor:   "Duplicate tensor",
	GroupUnknownTensor:     "Unknown tensor",
	GroupBadExpr:           "Malformed tensor expression",
	GroupBadKind:           "Unknown tensor kind",
	GroupBadType:           "Unknown element type",
	GroupBadMemory:         "Unknown memory class",
	GroupAxesMismatch:      "Axes do not match shape",
	GroupMissingFunction:   "Missing [function] table",
	GroupDuplicateArgument: "Duplicate function argument",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("GRP%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
