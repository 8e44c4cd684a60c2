// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lang

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Defaults(t *testing.T) {
	table := NewTable()

	cases := map[Code]string{
		"fr": "fra_Latn",
		"en": "eng_Latn",
		"es": "spa_Latn",
		"de": "deu_Latn",
		"ar": "arb_Arab",
	}
	for code, backend := range cases {
		got, ok := table.BackendCode(code)
		require.True(t, ok, "code %s should be supported", code)
		assert.Equal(t, backend, got)
	}

	_, ok := table.BackendCode("xx")
	assert.False(t, ok)
	assert.False(t, table.Supported(Unknown))
}

func TestTable_ExtraLanguages(t *testing.T) {
	table := NewTable(Language{Code: "it", Name: "Italian", BackendCode: "ita_Latn", Script: ScriptLatin})

	got, ok := table.BackendCode("it")
	require.True(t, ok)
	assert.Equal(t, "ita_Latn", got)
	assert.Len(t, table.All(), 6)
}

func TestTable_ExtraOverridesDefault(t *testing.T) {
	table := NewTable(Language{Code: "ar", Name: "Arabic (MSA)", BackendCode: "acm_Arab", Script: ScriptArabic})

	got, _ := table.BackendCode("ar")
	assert.Equal(t, "acm_Arab", got)
	// Override must not duplicate the entry.
	assert.Len(t, table.All(), 5)
}

func TestTable_CaseInsensitiveLookup(t *testing.T) {
	table := NewTable()
	l, ok := table.Lookup("FR")
	require.True(t, ok)
	assert.Equal(t, Code("fr"), l.Code)
}

func TestScriptFor(t *testing.T) {
	assert.Equal(t, ScriptArabic, ScriptFor("ar"))
	assert.Equal(t, ScriptArabic, ScriptFor("fa"))
	assert.Equal(t, ScriptArabic, ScriptFor("ur"))
	assert.Equal(t, ScriptArabic, ScriptFor("ug"))
	assert.Equal(t, ScriptLatin, ScriptFor("fr"))
	assert.Equal(t, ScriptLatin, ScriptFor("en"))
	assert.Equal(t, ScriptLatin, ScriptFor("zz"))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "EN", Display("en"))
	assert.Equal(t, "AR", Display("ar"))
	assert.Equal(t, "unknown", Display(Unknown))
}

// Every UI code resolves to exactly one backend code, no matter how the table
// is extended.
func TestTable_BackendMappingUnique(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genLang := gopter.CombineGens(
		gen.RegexMatch(`[a-z]{2}`),
		gen.RegexMatch(`[a-z]{3}_[A-Z][a-z]{3}`),
	).Map(func(vals []interface{}) Language {
		return Language{
			Code:        Code(vals[0].(string)),
			Name:        vals[0].(string),
			BackendCode: vals[1].(string),
			Script:      ScriptLatin,
		}
	})

	properties.Property("one backend code per UI code", prop.ForAll(
		func(extras []Language) bool {
			table := NewTable(extras...)
			seen := make(map[Code]string)
			for _, l := range table.All() {
				if prev, dup := seen[l.Code]; dup && prev != l.BackendCode {
					return false
				}
				seen[l.Code] = l.BackendCode
			}
			// Lookup must agree with the enumeration.
			for code, backend := range seen {
				got, ok := table.BackendCode(code)
				if !ok || got != backend {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genLang),
	))

	properties.TestingRun(t)
}
