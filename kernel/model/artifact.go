package model

import "encoding/json"

type MediaKind int

const (
	MacroSpreadsheet MediaKind = iota + 1
	Spreadsheet
)

const (
	MacroSpreadsheetMIME = "application/vnd.ms-excel.sheet.macroEnabled.12"
	SpreadsheetMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// MIME never looks at the filename.
func (m MediaKind) MIME() string {
	switch m {
	case MacroSpreadsheet:
		return MacroSpreadsheetMIME
	case Spreadsheet:
		return SpreadsheetMIME
	default:
		return ""
	}
}

func (m MediaKind) String() string {
	switch m {
	case MacroSpreadsheet:
		return "macro-spreadsheet"
	case Spreadsheet:
		return "spreadsheet"
	default:
		return "unknown"
	}
}

// GeneratedArtifact is an encoded output file from a conversion job.
type GeneratedArtifact struct {
	Role           string
	Filename       string
	EncodedPayload string
	Media          MediaKind
}

// TransferResult is what a successful transfer hands back to its slot.
type TransferResult struct {
	Message   string
	Artifacts []GeneratedArtifact
	// Blocks holds the records extracted by the seal job.
	Blocks []json.RawMessage
}
