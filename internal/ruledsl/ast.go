package ruledsl

// RuleSet is the parsed form of a whole source document: zero or more
// rule declarations.
type RuleSet struct {
	Rules []*RuleDecl `@@*`
}

// RuleDecl is a single "rule <name> { ... }" block.
type RuleDecl struct {
	Name    string     `"rule" @Ident "{"`
	Exports []*AttrRef `"export" @@ ( "," @@ )*`
	Using   []*AttrRef `"using" @@ ( "," @@ )*`
	Copy    bool       `@"copy" "}"`
}

// AttrRef names a single (node, attribute) pair in source form, e.g.
// "Decl.type".
type AttrRef struct {
	Node string `@Ident "."`
	Name string `@Ident`
}
