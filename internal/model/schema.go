package model

// Kind names a persisted entity.
type Kind string

const KindPaste Kind = "paste"

// Tables maps each persisted entity to its table. Names are declared here
// rather than derived from type names.
var Tables = map[Kind]string{
	KindPaste: "paste",
}

// TableName returns the table for k, or "" if k is not persisted.
func TableName(k Kind) string {
	return Tables[k]
}
