// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lang defines the supported language set and the mapping between
// short UI codes and the internal codes required by the translation backend.
package lang

import (
	"sort"
	"strings"
)

// Code is a short UI-facing language code such as "fr" or "en".
type Code string

// Unknown is the sentinel used when the source language cannot be resolved.
const Unknown Code = "unknown"

// Script identifies the script family a language belongs to. It drives OCR
// reader selection.
type Script string

const (
	ScriptLatin  Script = "latin"
	ScriptArabic Script = "arabic"
)

// Language describes one supported language.
type Language struct {
	// Code is the short UI code (e.g. "fr").
	Code Code `json:"code" yaml:"code"`
	// Name is the English display name.
	Name string `json:"name" yaml:"name"`
	// BackendCode is the internal code the translation backend requires
	// (e.g. "fra_Latn"). Every UI code has exactly one backend code.
	BackendCode string `json:"backend_code" yaml:"backend-code"`
	// Script is the script family used for OCR reader selection.
	Script Script `json:"script" yaml:"script"`
}

// defaults is the built-in language table. Additional languages can be
// registered from configuration at startup.
var defaults = []Language{
	{Code: "fr", Name: "French", BackendCode: "fra_Latn", Script: ScriptLatin},
	{Code: "en", Name: "English", BackendCode: "eng_Latn", Script: ScriptLatin},
	{Code: "es", Name: "Spanish", BackendCode: "spa_Latn", Script: ScriptLatin},
	{Code: "de", Name: "German", BackendCode: "deu_Latn", Script: ScriptLatin},
	{Code: "ar", Name: "Arabic", BackendCode: "arb_Arab", Script: ScriptArabic},
}

// arabicFamily lists the codes whose script family selects the Arabic OCR
// reader, mirroring the recognizer profiles of the OCR backend.
var arabicFamily = map[Code]bool{
	"ar": true,
	"fa": true,
	"ur": true,
	"ug": true,
}

// Table is an immutable registry of supported languages.
type Table struct {
	byCode map[Code]Language
	order  []Code
}

// NewTable builds a table from the built-in defaults plus any extra languages.
// An extra entry with a known code replaces the default for that code.
func NewTable(extra ...Language) *Table {
	t := &Table{byCode: make(map[Code]Language)}
	for _, l := range defaults {
		t.add(l)
	}
	for _, l := range extra {
		t.add(l)
	}
	return t
}

func (t *Table) add(l Language) {
	l.Code = Code(strings.ToLower(strings.TrimSpace(string(l.Code))))
	if l.Code == "" || l.BackendCode == "" {
		return
	}
	if _, exists := t.byCode[l.Code]; !exists {
		t.order = append(t.order, l.Code)
	}
	t.byCode[l.Code] = l
}

// Lookup returns the language for a UI code.
func (t *Table) Lookup(code Code) (Language, bool) {
	l, ok := t.byCode[Code(strings.ToLower(string(code)))]
	return l, ok
}

// BackendCode resolves a UI code to the backend-internal code.
func (t *Table) BackendCode(code Code) (string, bool) {
	l, ok := t.Lookup(code)
	if !ok {
		return "", false
	}
	return l.BackendCode, true
}

// Supported reports whether the UI code belongs to the supported set.
func (t *Table) Supported(code Code) bool {
	_, ok := t.Lookup(code)
	return ok
}

// All returns the supported languages in registration order.
func (t *Table) All() []Language {
	out := make([]Language, 0, len(t.order))
	for _, c := range t.order {
		out = append(out, t.byCode[c])
	}
	return out
}

// Codes returns the sorted UI codes, mainly for stable log output.
func (t *Table) Codes() []string {
	out := make([]string, 0, len(t.byCode))
	for c := range t.byCode {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

// ScriptFor returns the script family for an arbitrary code. Codes outside
// the supported table still resolve through the Arabic-family list so OCR
// reader selection works for ar/fa/ur/ug targets.
func ScriptFor(code Code) Script {
	if arabicFamily[Code(strings.ToLower(string(code)))] {
		return ScriptArabic
	}
	return ScriptLatin
}

// Display returns the uppercased UI code used in export section labels.
// The unknown sentinel keeps its lowercase spelling to stay visually distinct.
func Display(code Code) string {
	if code == Unknown {
		return string(Unknown)
	}
	return strings.ToUpper(string(code))
}
