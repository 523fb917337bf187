package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Семантические
	SemaInfo             Code = 3000
	SemaError            Code = 3001
	SemaDuplicateSymbol  Code = 3002
	SemaUnresolvedSymbol Code = 3005

	// IMPORT statement constraints (C8100, C898)
	SemaImportNoneNotAlone Code = 3100
	SemaImportAllNotAlone  Code = 3101
	SemaImportOnlyMixed    Code = 3102
	SemaImportUnknownName  Code = 3103

	// lookups requested by a unit description
	SemaLookupMismatch    Code = 3110
	SemaComponentNotFound Code = 3111
	SemaTypeUnresolved    Code = 3112

	// Ввод-вывод
	IOLoadFileError Code = 4001

	// Unit description
	PrjUnitInvalid      Code = 5001
	PrjUnknownScope     Code = 5002
	PrjUnknownScopeKind Code = 5003

	// Compiler-internal
	ObsInternalError Code = 6001
	ObsTimings       Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	SemaInfo:               "Semantic information",
	SemaError:              "Semantic error",
	SemaDuplicateSymbol:    "Duplicate symbol definition",
	SemaUnresolvedSymbol:   "Unresolved symbol",
	SemaImportNoneNotAlone: "IMPORT,NONE must be the only IMPORT statement",
	SemaImportAllNotAlone:  "IMPORT,ALL must be the only IMPORT statement",
	SemaImportOnlyMixed:    "IMPORT statements must all have ONLY",
	SemaImportUnknownName:  "Imported name is not visible in the host",
	SemaLookupMismatch:     "Lookup resolved to an unexpected scope",
	SemaComponentNotFound:  "Component not found",
	SemaTypeUnresolved:     "Type could not be resolved",
	IOLoadFileError:        "Failed to load source file",
	PrjUnitInvalid:         "Invalid unit description",
	PrjUnknownScope:        "Unknown scope path",
	PrjUnknownScopeKind:    "Unknown scope kind",
	ObsInternalError:       "Internal compiler error",
	ObsTimings:             "Pass timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("ICE%04d", ic)
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
