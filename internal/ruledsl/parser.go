package ruledsl

import "github.com/alecthomas/participle/v2"

// Parser parses a ruledsl source document into a RuleSet.
var Parser = participle.MustBuild[RuleSet](
	participle.Lexer(dslLexer),
	participle.Elide("Whitespace", "Comment"),
)

// Parse parses source into a RuleSet.
func Parse(source string) (*RuleSet, error) {
	return Parser.ParseString("", source)
}
