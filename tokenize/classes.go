package tokenize

import (
	"github.com/alecthomas/chroma/v2"

	"pkt.systems/codebook"
)

func classOf(tt chroma.TokenType) codebook.TokenClass {
	switch {
	case tt == chroma.KeywordType, tt == chroma.NameClass, tt == chroma.NameBuiltin:
		return codebook.ClassType
	case tt.InCategory(chroma.Keyword):
		return codebook.ClassKeyword
	case tt.InSubCategory(chroma.LiteralString):
		return codebook.ClassString
	case tt.InSubCategory(chroma.LiteralNumber):
		return codebook.ClassNumber
	case tt.InCategory(chroma.Comment):
		return codebook.ClassComment
	case tt == chroma.NameFunction, tt == chroma.NameFunctionMagic:
		return codebook.ClassFunction
	case tt.InCategory(chroma.Operator):
		return codebook.ClassOperator
	default:
		return codebook.ClassPlain
	}
}
