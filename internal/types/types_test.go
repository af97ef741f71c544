package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"main.go", LangGo},
		{"src/App.TSX", LangTSX},
		{"lib/util.mjs", LangJavaScript},
		{"pkg/__init__.py", LangPython},
		{"include/vec.h", LangC},
		{"src/vec.hpp", LangCPP},
		{"app.rb", LangRuby},
		{"README.md", LangUnknown},
		{"Makefile", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageForPath(tt.path))
		})
	}
}

func TestFunctionRecordComplexity(t *testing.T) {
	assert.Equal(t, 1, FunctionRecord{Name: "simple"}.Complexity())
	assert.Equal(t, 4, FunctionRecord{Name: "branchy", DecisionPoints: 3}.Complexity())
	assert.Equal(t, 1, FunctionRecord{Name: "corrupt", DecisionPoints: -2}.Complexity(), "complexity never drops below 1")
}
