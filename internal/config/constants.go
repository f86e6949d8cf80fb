package config

const SourceFileExt = ".py"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".py", ".pyi"}

// ConfigFileNames are searched for, in order, by FindConfig.
var ConfigFileNames = []string{"pyhint.yaml", "pyhint.yml"}

// Builtin class names
const (
	ObjectTypeName    = "object"
	TypeTypeName      = "type"
	IntTypeName       = "int"
	FloatTypeName     = "float"
	ComplexTypeName   = "complex"
	BoolTypeName      = "bool"
	StrTypeName       = "str"
	BytesTypeName     = "bytes"
	ListTypeName      = "list"
	TupleTypeName     = "tuple"
	DictTypeName      = "dict"
	SetTypeName       = "set"
	FrozenSetTypeName = "frozenset"
	NoneTypeName      = "NoneType"
)

// Module names
const (
	BuiltinsModule         = "builtins"
	TypingModule           = "typing"
	TypingExtensionsModule = "typing_extensions"
)

// Version is reported by `pyhint version`.
const Version = "0.1.0"

// Defaults
const (
	DefaultMaxUnifyDepth = 64
	DefaultServiceAddr   = ":50051"
	DefaultReportPath    = "pyhint.db"
)

// IsSourceFile reports whether path has a recognized extension.
func IsSourceFile(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
