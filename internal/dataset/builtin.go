package dataset

import (
	"bytes"
	_ "embed"
)

// BuiltinSource is the source label of the embedded knowledge base.
const BuiltinSource = "builtin"

//go:embed knowledgebase.csv
var builtinCSV []byte

// Builtin parses the knowledge base compiled into the binary.
func Builtin() (*Table, error) {
	return Load(bytes.NewReader(builtinCSV), BuiltinSource, ',')
}
