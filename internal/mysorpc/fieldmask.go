package mysorpc

import (
	"sort"
	"strings"
)

// Wildcard selects every field of a response.
const Wildcard = "*"

// Field paths understood by the client.
const (
	FieldType              = "type"
	FieldOwner             = "owner"
	FieldContent           = "content"
	FieldBcs               = "bcs"
	FieldPreviousTx        = "previous_transaction"
	FieldStorageRebate     = "storage_rebate"
	FieldDisplay           = "display"
	FieldInput             = "input"
	FieldRawInput          = "raw_input"
	FieldEffects           = "effects"
	FieldEvents            = "events"
	FieldObjectChanges     = "object_changes"
	FieldBalanceChanges    = "balance_changes"
	FieldRawEffects        = "raw_effects"
	fieldMaskPathSeparator = ","
)

// FieldMask selects which parts of a response the node fills in.
// The zero value selects nothing beyond the identifying fields.
type FieldMask struct {
	paths map[string]struct{}
}

// FieldMaskFromString parses a comma separated list of paths. "*" selects everything.
func FieldMaskFromString(s string) FieldMask {
	return FieldMaskFromPaths(strings.Split(s, fieldMaskPathSeparator)...)
}

// FieldMaskFromPaths builds a mask from individual paths.
func FieldMaskFromPaths(paths ...string) FieldMask {
	m := FieldMask{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m.paths[p] = struct{}{}
	}
	return m
}

// Has reports whether path is selected.
func (m FieldMask) Has(path string) bool {
	if _, ok := m.paths[Wildcard]; ok {
		return true
	}
	_, ok := m.paths[path]
	return ok
}

// Paths returns the selected paths in sorted order.
func (m FieldMask) Paths() []string {
	out := make([]string, 0, len(m.paths))
	for p := range m.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m FieldMask) String() string {
	return strings.Join(m.Paths(), fieldMaskPathSeparator)
}

// ObjectDataOptions is the object read mask in the node's wire form.
type ObjectDataOptions struct {
	ShowType                bool `json:"showType"`
	ShowOwner               bool `json:"showOwner"`
	ShowPreviousTransaction bool `json:"showPreviousTransaction"`
	ShowDisplay             bool `json:"showDisplay"`
	ShowContent             bool `json:"showContent"`
	ShowBcs                 bool `json:"showBcs"`
	ShowStorageRebate       bool `json:"showStorageRebate"`
}

// ObjectOptions translates the mask into object read options.
func (m FieldMask) ObjectOptions() ObjectDataOptions {
	return ObjectDataOptions{
		ShowType:                m.Has(FieldType),
		ShowOwner:               m.Has(FieldOwner),
		ShowPreviousTransaction: m.Has(FieldPreviousTx),
		ShowDisplay:             m.Has(FieldDisplay),
		ShowContent:             m.Has(FieldContent),
		ShowBcs:                 m.Has(FieldBcs),
		ShowStorageRebate:       m.Has(FieldStorageRebate),
	}
}

// TransactionOptions is the transaction read mask in the node's wire form.
type TransactionOptions struct {
	ShowInput          bool `json:"showInput"`
	ShowRawInput       bool `json:"showRawInput"`
	ShowEffects        bool `json:"showEffects"`
	ShowEvents         bool `json:"showEvents"`
	ShowObjectChanges  bool `json:"showObjectChanges"`
	ShowBalanceChanges bool `json:"showBalanceChanges"`
	ShowRawEffects     bool `json:"showRawEffects"`
}

// TransactionOptions translates the mask into transaction read options. Effects are always
// requested since execution status lives there.
func (m FieldMask) TransactionOptions() TransactionOptions {
	return TransactionOptions{
		ShowInput:          m.Has(FieldInput),
		ShowRawInput:       m.Has(FieldRawInput),
		ShowEffects:        true,
		ShowEvents:         m.Has(FieldEvents),
		ShowObjectChanges:  m.Has(FieldObjectChanges),
		ShowBalanceChanges: m.Has(FieldBalanceChanges),
		ShowRawEffects:     m.Has(FieldRawEffects),
	}
}
