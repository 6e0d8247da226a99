package models

import (
	"encoding/json"
)

// LinkReference is one placeholder in unlinked bytecode
type LinkReference struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Artifact is a Hardhat compilation artifact
type Artifact struct {
	ContractName   string                                `json:"contractName"`
	SourceName     string                                `json:"sourceName"`
	ABI            json.RawMessage                       `json:"abi"`
	Bytecode       string                                `json:"bytecode"`
	LinkReferences map[string]map[string][]LinkReference `json:"linkReferences"`

	// Path is the file the artifact was read from
	Path string `json:"-"`
}

// NeedsLinking reports whether the bytecode has unresolved library placeholders
func (a *Artifact) NeedsLinking() bool {
	for _, libs := range a.LinkReferences {
		if len(libs) > 0 {
			return true
		}
	}
	return false
}

// HasBytecode reports whether the artifact can be deployed
func (a *Artifact) HasBytecode() bool {
	return a.Bytecode != "" && a.Bytecode != "0x"
}
