package syntax

import "io"

// Maximum number of errors before aborting parse.
const maxErrors = 10

// maxDepth bounds statement and expression nesting.
const maxDepth = 500

// SyntaxError represents a syntax error.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// token is one scanned token. The parser scans the whole input up front so
// that it can look arbitrarily far ahead (generic argument lists, casts and
// lambda parameter lists are only recognizable that way).
type token struct {
	tok  Token
	lit  string
	kind LitKind
	pos  Pos
	segs []Segment
}

// Parser performs syntax analysis on C# source code.
type Parser struct {
	filename string
	toks     []token
	i        int // index of the current token

	// Current token info (cached from toks[i])
	tok Token
	lit string
	pos Pos

	// Error handling
	errh   func(pos Pos, msg string)
	errcnt int
	first  error // first error encountered
	abort  bool  // set to true when error limit reached

	depth int // current nesting depth
}

// NewParser creates a new Parser for the given source.
func NewParser(filename string, src io.Reader, errh func(pos Pos, msg string)) *Parser {
	p := &Parser{filename: filename, errh: errh}
	p.init(NewScanner(filename, src, p.scanError))
	return p
}

func (p *Parser) init(s *Scanner) {
	for {
		s.Next()
		p.toks = append(p.toks, token{tok: s.tok, lit: s.lit, kind: s.kind, pos: s.tokPos, segs: s.segs})
		if s.tok == _EOF {
			break
		}
	}
	p.i = -1
	p.next()
}

func (p *Parser) scanError(line, col uint32, msg string) {
	p.syntaxErrorAt(NewPos(p.filename, line, col), msg)
}

// ----------------------------------------------------------------------------
// Token navigation

// next advances to the next token.
func (p *Parser) next() {
	if p.i < len(p.toks)-1 {
		p.i++
	}
	t := &p.toks[p.i]
	p.tok = t.tok
	p.lit = t.lit
	p.pos = t.pos
}

// at returns the token at index j, or EOF past the end.
func (p *Parser) at(j int) *token {
	if j >= len(p.toks) {
		j = len(p.toks) - 1
	}
	return &p.toks[j]
}

// peek returns the type of the k-th token after the current one.
func (p *Parser) peek(k int) Token {
	return p.at(p.i + k).tok
}

// got reports whether the current token is tok.
// If so, it consumes the token and returns true.
func (p *Parser) got(tok Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes the current token if it matches tok.
// Otherwise, reports an error.
func (p *Parser) want(tok Token) {
	if !p.got(tok) {
		p.syntaxError("expected " + tok.String() + ", found " + p.describe())
		p.advance()
	}
}

// isContextual reports whether the current token is the contextual keyword kw.
func (p *Parser) isContextual(kw string) bool {
	return p.tok == _Name && p.lit == kw
}

// describe returns a short description of the current token for messages.
func (p *Parser) describe() string {
	switch p.tok {
	case _Name:
		return "name " + p.lit
	case _Literal:
		return "literal " + p.lit
	case _Interp:
		return "interpolated string"
	}
	return p.tok.String()
}

// ----------------------------------------------------------------------------
// Error handling

// syntaxError reports a syntax error at the current position.
func (p *Parser) syntaxError(msg string) {
	p.syntaxErrorAt(p.pos, msg)
}

// syntaxErrorAt reports a syntax error at a specific position.
func (p *Parser) syntaxErrorAt(pos Pos, msg string) {
	if p.abort {
		return
	}
	if p.errcnt == 0 {
		p.first = &SyntaxError{Pos: pos, Msg: msg}
	}
	p.errcnt++

	if p.errh != nil {
		p.errh(pos, msg)
	}

	if p.errcnt >= maxErrors {
		p.abort = true
		if p.errh != nil {
			p.errh(pos, "too many errors; aborting parse")
		}
	}
}

// advance skips tokens until it finds a synchronization point.
// This is used for error recovery.
func (p *Parser) advance() {
	for p.tok != _EOF && p.tok != _Semi && p.tok != _Rbrace && p.tok != _Lbrace {
		p.next()
	}
	if p.tok == _Semi {
		p.next()
	}
}

// enter guards against pathologically deep nesting. Every call must be
// paired with a deferred p.leave().
func (p *Parser) enter() bool {
	p.depth++
	if p.depth > maxDepth {
		p.syntaxError("nesting too deep")
		p.abort = true
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}

// done reports whether list parsing should stop.
func (p *Parser) done(close Token) bool {
	return p.abort || p.tok == close || p.tok == _EOF
}

// progress makes sure a list loop consumes at least one token per iteration.
func (p *Parser) progress(start int) {
	if p.i == start && p.tok != _EOF {
		p.next()
	}
}

// Errors returns the number of errors encountered during parsing.
func (p *Parser) Errors() int {
	return p.errcnt
}

// FirstError returns the first error encountered, or nil if none.
func (p *Parser) FirstError() error {
	return p.first
}

// ----------------------------------------------------------------------------
// Parsing entry points

// Parse parses a complete compilation unit and returns the AST.
func (p *Parser) Parse() *File {
	f := &File{}
	f.pos = p.pos

	for !p.abort && p.isUsingDirective() {
		f.Usings = append(f.Usings, p.usingDecl())
	}

	for !p.done(_EOF) {
		start := p.i
		if d := p.topLevelDecl(); d != nil {
			f.Decls = append(f.Decls, d)
		}
		p.progress(start)
	}
	return f
}

// ParseExpr parses a single expression followed by EOF.
func (p *Parser) ParseExpr() Expr {
	x := p.expr()
	if p.tok != _EOF && !p.abort {
		p.syntaxError("unexpected " + p.describe() + " after expression")
	}
	return x
}

// subExpr parses the source of an interpolation hole.
func (p *Parser) subExpr(text string, pos Pos) Expr {
	sub := &Parser{filename: p.filename, errh: p.errh}
	sub.init(newScannerAt(text, pos, sub.scanError))
	sub.depth = p.depth
	x := sub.ParseExpr()
	if sub.errcnt > 0 {
		if p.errcnt == 0 {
			p.first = sub.first
		}
		p.errcnt += sub.errcnt
		if p.errcnt >= maxErrors {
			p.abort = true
		}
	}
	return x
}

// ----------------------------------------------------------------------------
// Declarations

// isUsingDirective distinguishes using directives from using statements
// and using declarations at the start of a file or namespace.
func (p *Parser) isUsingDirective() bool {
	if p.tok != _Using {
		return false
	}
	switch p.peek(1) {
	case _Static:
		return true
	case _Name:
		// using X = A.B; | using A.B; but not using var x = ...; or using T x = ...;
		if p.peek(2) == _Assign || p.peek(2) == _Semi || p.peek(2) == _Dot {
			return !p.isDeclAt(p.i + 1)
		}
	}
	return false
}

// usingDecl parses: using [static] [Alias =] A.B;
func (p *Parser) usingDecl() *UsingDecl {
	d := &UsingDecl{}
	d.pos = p.pos
	p.want(_Using)
	if p.got(_Static) {
		d.Static = true
	}
	if p.tok == _Name && p.peek(1) == _Assign {
		d.Alias = p.name()
		p.want(_Assign)
	}
	d.Path = p.qualifiedName()
	p.want(_Semi)
	return d
}

// topLevelDecl parses a namespace member or a top-level statement.
func (p *Parser) topLevelDecl() Decl {
	if p.startsTypeDecl() {
		return p.typeDecl()
	}
	s := &GlobalStmt{Stmt: p.stmt()}
	s.pos = s.Stmt.Pos()
	return s
}

// startsTypeDecl reports whether the tokens at the current position, after
// any attributes and modifiers, begin a namespace or type declaration.
func (p *Parser) startsTypeDecl() bool {
	j := p.i
	for {
		t := p.at(j)
		switch {
		case t.tok == _Lbrack:
			j = p.skipBracketsAt(j)
			continue
		case modifierTokens[t.tok] != 0:
			j++
			continue
		case t.tok == _Name && t.lit == "partial":
			j++
			continue
		}
		switch t.tok {
		case _Namespace, _Class, _Struct, _Interface, _Enum, _Delegate:
			return true
		case _Name:
			return t.lit == "record" && p.at(j+1).tok == _Name
		}
		return false
	}
}

// skipBracketsAt returns the index after the bracketed group starting at j.
func (p *Parser) skipBracketsAt(j int) int {
	depth := 0
	for ; ; j++ {
		switch p.at(j).tok {
		case _Lbrack:
			depth++
		case _Rbrack:
			depth--
			if depth == 0 {
				return j + 1
			}
		case _EOF:
			return j
		}
	}
}

// attributes skips attribute sections; attributes carry no meaning for
// the translation.
func (p *Parser) attributes() {
	for p.tok == _Lbrack {
		end := p.skipBracketsAt(p.i)
		for p.i < end && p.tok != _EOF {
			p.next()
		}
	}
}

var modifierTokens = map[Token]Modifiers{
	_Public:    ModPublic,
	_Private:   ModPrivate,
	_Protected: ModProtected,
	_Internal:  ModInternal,
	_Static:    ModStatic,
	_Abstract:  ModAbstract,
	_Virtual:   ModVirtual,
	_Override:  ModOverride,
	_Sealed:    ModSealed,
	_Readonly:  ModReadonly,
	_Const:     ModConst,
	_Extern:    ModExtern,
	_Unsafe:    ModUnsafe,
	_Volatile:  ModVolatile,
}

// modifiers parses a possibly empty modifier list. In member context,
// new is a modifier too.
func (p *Parser) modifiers(member bool) Modifiers {
	var m Modifiers
	for {
		if mod, ok := modifierTokens[p.tok]; ok {
			m |= mod
			p.next()
			continue
		}
		if member && p.tok == _New {
			m |= ModNew
			p.next()
			continue
		}
		if p.tok == _Name && (p.lit == "async" || p.lit == "partial") {
			next := p.peek(1)
			if next == _Name || next.IsKeyword() && next != _Is && next != _As {
				if p.lit == "async" {
					m |= ModAsync
				} else {
					m |= ModPartial
				}
				p.next()
				continue
			}
		}
		return m
	}
}

// typeDecl parses a namespace, class, struct, interface or enum declaration.
func (p *Parser) typeDecl() Decl {
	p.attributes()
	pos := p.pos
	mods := p.modifiers(true)

	switch p.tok {
	case _Namespace:
		return p.namespaceDecl()
	case _Class, _Struct, _Interface:
		return p.classDecl(pos, mods)
	case _Enum:
		return p.enumDecl(pos, mods)
	case _Delegate:
		p.syntaxError("delegate type declarations are not supported")
	default:
		if p.isContextual("record") {
			p.syntaxError("record declarations are not supported")
		} else {
			p.syntaxError("expected type declaration, found " + p.describe())
		}
	}
	p.advance()
	return nil
}

// namespaceDecl parses: namespace A.B { ... } | namespace A.B;
func (p *Parser) namespaceDecl() *NamespaceDecl {
	d := &NamespaceDecl{}
	d.pos = p.pos
	p.want(_Namespace)
	d.Name = p.qualifiedName()

	if p.got(_Semi) {
		d.FileScoped = true
		for !p.abort && p.isUsingDirective() {
			d.Usings = append(d.Usings, p.usingDecl())
		}
		for !p.done(_EOF) {
			start := p.i
			if m := p.topLevelDecl(); m != nil {
				d.Decls = append(d.Decls, m)
			}
			p.progress(start)
		}
		return d
	}

	p.want(_Lbrace)
	for !p.abort && p.isUsingDirective() {
		d.Usings = append(d.Usings, p.usingDecl())
	}
	for !p.done(_Rbrace) {
		start := p.i
		if p.startsTypeDecl() {
			if m := p.typeDecl(); m != nil {
				d.Decls = append(d.Decls, m)
			}
		} else {
			p.syntaxError("expected type or namespace declaration, found " + p.describe())
			p.advance()
		}
		p.progress(start)
	}
	p.want(_Rbrace)
	p.got(_Semi)
	return d
}

// classDecl parses: class|struct|interface Name[<T>] [: Bases] [where ...] { Members }
func (p *Parser) classDecl(pos Pos, mods Modifiers) *ClassDecl {
	d := &ClassDecl{Mods: mods}
	d.pos = pos
	switch p.tok {
	case _Struct:
		d.Kind = StructKind
	case _Interface:
		d.Kind = InterfaceKind
	}
	p.next()

	d.Name = p.name()
	d.TypeParams = p.typeParams()
	if p.got(_Colon) {
		for {
			d.Bases = append(d.Bases, p.type_())
			if !p.got(_Comma) {
				break
			}
		}
	}
	p.constraints()

	p.want(_Lbrace)
	for !p.done(_Rbrace) {
		start := p.i
		if m := p.memberDecl(d.Name.Value); m != nil {
			d.Members = append(d.Members, m)
		}
		p.progress(start)
	}
	p.want(_Rbrace)
	p.got(_Semi)
	return d
}

// typeParams parses an optional <T, in U, out V> list.
func (p *Parser) typeParams() []*Name {
	if !p.got(_Lss) {
		return nil
	}
	var names []*Name
	for {
		p.attributes()
		if p.tok == _In || p.tok == _Out {
			p.next()
		}
		names = append(names, p.name())
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Gtr)
	return names
}

// constraints skips where clauses: where T : class, new()
func (p *Parser) constraints() {
	for p.isContextual("where") {
		depth := 0
		for p.tok != _EOF {
			switch p.tok {
			case _Lparen:
				depth++
			case _Rparen:
				depth--
			case _Lbrace, _Semi, _Arrow:
				if depth == 0 {
					return
				}
			}
			p.next()
		}
	}
}

// enumDecl parses: enum Name [: Base] { A, B = 2, }
func (p *Parser) enumDecl(pos Pos, mods Modifiers) *EnumDecl {
	d := &EnumDecl{Mods: mods}
	d.pos = pos
	p.want(_Enum)
	d.Name = p.name()
	if p.got(_Colon) {
		d.Base = p.type_()
	}
	p.want(_Lbrace)
	for !p.done(_Rbrace) {
		p.attributes()
		m := &EnumMember{}
		m.pos = p.pos
		m.Name = p.name()
		if p.got(_Assign) {
			m.Value = p.expr()
		}
		d.Members = append(d.Members, m)
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Rbrace)
	p.got(_Semi)
	return d
}

// memberDecl parses a member of a class, struct or interface body.
func (p *Parser) memberDecl(className string) Decl {
	p.attributes()
	pos := p.pos
	mods := p.modifiers(true)

	switch p.tok {
	case _Class, _Struct, _Interface:
		return p.classDecl(pos, mods)
	case _Enum:
		return p.enumDecl(pos, mods)
	case _Event:
		p.next()
		d := p.fieldDecl(pos, mods, p.type_())
		d.Event = true
		return d
	case _Tilde:
		return p.dtorDecl(pos)
	case _Implicit, _Explicit:
		return p.conversionDecl(pos, mods)
	case _Delegate:
		p.syntaxError("delegate type declarations are not supported")
		p.advance()
		return nil
	case _Semi:
		p.next()
		return nil
	}

	if p.tok == _Name && p.lit == className && p.peek(1) == _Lparen {
		return p.ctorDecl(pos, mods)
	}

	typ := p.type_()
	switch p.tok {
	case _Operator:
		return p.operatorDecl(pos, mods, typ)
	case _This:
		return p.indexerDecl(pos, mods, typ)
	case _Name:
	default:
		p.syntaxError("expected member name, found " + p.describe())
		p.advance()
		return nil
	}

	if p.peek(1) == _Dot {
		p.syntaxError("explicit interface implementations are not supported")
		p.advance()
		return nil
	}

	switch p.peek(1) {
	case _Lparen, _Lss:
		return p.methodDecl(pos, mods, typ)
	case _Lbrace, _Arrow:
		return p.propertyDecl(pos, mods, typ)
	}
	return p.fieldDecl(pos, mods, typ)
}

// fieldDecl parses the declarators of a field: a = 1, b;
func (p *Parser) fieldDecl(pos Pos, mods Modifiers, typ Expr) *FieldDecl {
	d := &FieldDecl{Mods: mods, Type: typ}
	d.pos = pos
	d.Vars = p.varSpecs()
	p.want(_Semi)
	return d
}

// varSpecs parses a comma-separated declarator list.
func (p *Parser) varSpecs() []*VarSpec {
	var vars []*VarSpec
	for {
		v := &VarSpec{}
		v.pos = p.pos
		v.Name = p.name()
		if p.got(_Assign) {
			v.Value = p.varInit()
		}
		vars = append(vars, v)
		if !p.got(_Comma) {
			break
		}
	}
	return vars
}

// varInit parses a variable initializer, which may be an array initializer.
func (p *Parser) varInit() Expr {
	if p.tok == _Lbrace {
		return p.initExpr()
	}
	return p.expr()
}

// methodDecl parses: Name[<T>](Params) [where ...] (Body | => Expr; | ;)
func (p *Parser) methodDecl(pos Pos, mods Modifiers, result Expr) *MethodDecl {
	d := &MethodDecl{Mods: mods, Result: result}
	d.pos = pos
	d.Name = p.name()
	d.TypeParams = p.typeParams()
	d.Params = p.paramList(_Lparen, _Rparen)
	p.constraints()
	d.Body, d.ExprBody = p.funcBody()
	return d
}

// funcBody parses a block body, an expression body followed by ';', or a
// bare ';' (no body).
func (p *Parser) funcBody() (*BlockStmt, Expr) {
	switch p.tok {
	case _Lbrace:
		return p.blockStmt(), nil
	case _Arrow:
		p.next()
		x := p.expr()
		p.want(_Semi)
		return nil, x
	}
	p.want(_Semi)
	return nil, nil
}

// ctorDecl parses: Name(Params) [: base(Args) | : this(Args)] Body
func (p *Parser) ctorDecl(pos Pos, mods Modifiers) *CtorDecl {
	d := &CtorDecl{Mods: mods}
	d.pos = pos
	d.Name = p.name()
	d.Params = p.paramList(_Lparen, _Rparen)
	if p.got(_Colon) {
		init := &CtorInit{}
		init.pos = p.pos
		switch p.tok {
		case _Base:
		case _This:
			init.This = true
		default:
			p.syntaxError("expected base or this, found " + p.describe())
		}
		p.next()
		init.Args = p.argList(_Lparen, _Rparen)
		d.Init = init
	}
	d.Body, d.ExprBody = p.funcBody()
	return d
}

// dtorDecl parses: ~Name() Body
func (p *Parser) dtorDecl(pos Pos) *DtorDecl {
	d := &DtorDecl{}
	d.pos = pos
	p.want(_Tilde)
	d.Name = p.name()
	p.want(_Lparen)
	p.want(_Rparen)
	d.Body, d.ExprBody = p.funcBody()
	return d
}

// operatorDecl parses: operator OP(Params) Body, after the result type.
func (p *Parser) operatorDecl(pos Pos, mods Modifiers, result Expr) *OperatorDecl {
	d := &OperatorDecl{Mods: mods, Result: result}
	d.pos = pos
	p.want(_Operator)
	d.Op = p.tok.String()
	if p.tok == _Gtr && p.peek(1) == _Gtr {
		d.Op = ">>"
		p.next()
	}
	p.next()
	d.Params = p.paramList(_Lparen, _Rparen)
	d.Body, d.ExprBody = p.funcBody()
	return d
}

// conversionDecl parses: implicit|explicit operator Type(Params) Body
func (p *Parser) conversionDecl(pos Pos, mods Modifiers) *OperatorDecl {
	d := &OperatorDecl{Mods: mods, Op: p.tok.String()}
	d.pos = pos
	p.next()
	p.want(_Operator)
	d.Result = p.type_()
	d.Params = p.paramList(_Lparen, _Rparen)
	d.Body, d.ExprBody = p.funcBody()
	return d
}

// indexerDecl parses: this[Params] { accessors } after the element type.
func (p *Parser) indexerDecl(pos Pos, mods Modifiers, typ Expr) *IndexerDecl {
	d := &IndexerDecl{Mods: mods, Type: typ}
	d.pos = pos
	p.want(_This)
	d.Params = p.paramList(_Lbrack, _Rbrack)
	if p.got(_Arrow) {
		d.ExprBody = p.expr()
		p.want(_Semi)
		return d
	}
	d.Accessors = p.accessorList()
	return d
}

// propertyDecl parses: Name { accessors } [= Value;] | Name => Expr;
func (p *Parser) propertyDecl(pos Pos, mods Modifiers, typ Expr) *PropertyDecl {
	d := &PropertyDecl{Mods: mods, Type: typ}
	d.pos = pos
	d.Name = p.name()
	if p.got(_Arrow) {
		d.ExprBody = p.expr()
		p.want(_Semi)
		return d
	}
	d.Accessors = p.accessorList()
	if p.got(_Assign) {
		d.Value = p.varInit()
		p.want(_Semi)
	}
	return d
}

// accessorList parses { get; set { ... } init => x; }
func (p *Parser) accessorList() []*Accessor {
	var list []*Accessor
	p.want(_Lbrace)
	for !p.done(_Rbrace) {
		p.attributes()
		a := &Accessor{}
		a.pos = p.pos
		a.Mods = p.modifiers(false)
		if p.tok != _Name || (p.lit != "get" && p.lit != "set" && p.lit != "init") {
			p.syntaxError("expected get, set or init accessor, found " + p.describe())
			p.advance()
			break
		}
		a.Kind = p.lit
		p.next()
		a.Body, a.ExprBody = p.funcBody()
		list = append(list, a)
	}
	p.want(_Rbrace)
	return list
}

// paramList parses a parameter list between open and close.
func (p *Parser) paramList(open, close Token) []*Param {
	p.want(open)
	var params []*Param
	for !p.done(close) {
		params = append(params, p.param(false))
		if !p.got(_Comma) {
			break
		}
	}
	p.want(close)
	return params
}

// param parses [attrs] [params|ref|out|in|this] Type Name [= Default].
// For lambdas the type may be omitted.
func (p *Parser) param(lambda bool) *Param {
	p.attributes()
	prm := &Param{}
	prm.pos = p.pos
	switch p.tok {
	case _Params, _Ref, _Out, _In, _This:
		prm.Mod = p.tok
		p.next()
	}
	if !(lambda && p.tok == _Name && (p.peek(1) == _Comma || p.peek(1) == _Rparen)) {
		prm.Type = p.type_()
	}
	prm.Name = p.name()
	if p.got(_Assign) {
		prm.Default = p.expr()
	}
	return prm
}

// ----------------------------------------------------------------------------
// Statements

// stmt parses a statement.
func (p *Parser) stmt() Stmt {
	if !p.enter() {
		defer p.leave()
		s := &EmptyStmt{}
		s.pos = p.pos
		return s
	}
	defer p.leave()

	switch p.tok {
	case _Lbrace:
		return p.blockStmt()

	case _Semi:
		s := &EmptyStmt{}
		s.pos = p.pos
		p.next()
		return s

	case _If:
		return p.ifStmt()

	case _Switch:
		return p.switchStmt()

	case _For:
		return p.forStmt()

	case _Foreach:
		return p.foreachStmt()

	case _While:
		return p.whileStmt()

	case _Do:
		return p.doStmt()

	case _Break, _Continue:
		return p.branchStmt()

	case _Return:
		return p.returnStmt()

	case _Throw:
		return p.throwStmt()

	case _Try:
		return p.tryStmt()

	case _Using:
		return p.usingStmt()

	case _Lock:
		return p.lockStmt()

	case _Const:
		pos := p.pos
		p.next()
		return p.declStmt(pos, true)

	case _Goto:
		p.syntaxError("goto statements are not supported")
		p.advance()
		s := &EmptyStmt{}
		s.pos = p.pos
		return s

	case _Checked, _Unchecked:
		if p.peek(1) == _Lbrace {
			p.next()
			return p.blockStmt()
		}

	case _Static, _Extern, _Unsafe:
		return p.funcStmt(p.pos, p.modifiers(false))

	case _Name:
		if p.lit == "yield" && (p.peek(1) == _Return || p.peek(1) == _Break) {
			return p.yieldStmt()
		}
		if p.lit == "await" && p.peek(1) != _Assign && canStartOperand(p.peek(1)) {
			return p.exprStmt()
		}
		if p.lit == "async" && p.peek(1) != _Assign && p.peek(1) != _Lparen && p.peek(1) != _Dot {
			if _, fn := p.declKind(p.i + 1); fn {
				return p.funcStmt(p.pos, p.modifiers(false))
			}
		}
	}

	if p.tok == _Name || p.tok.IsPredefinedType() {
		if decl, fn := p.declKind(p.i); decl {
			return p.declStmt(p.pos, false)
		} else if fn {
			return p.funcStmt(p.pos, 0)
		}
	}

	return p.exprStmt()
}

// declKind reports whether the tokens starting at j begin a local variable
// declaration (Type Name = | ; | ,) or a local function (Type Name( | <).
func (p *Parser) declKind(j int) (decl, fn bool) {
	end, ok := p.scanType(j, true)
	if !ok || p.at(end).tok != _Name {
		return false, false
	}
	switch p.at(end + 1).tok {
	case _Assign, _Semi, _Comma:
		return true, false
	case _Lparen, _Lss:
		return false, true
	}
	return false, false
}

// isDeclAt reports whether a local variable declaration starts at j.
func (p *Parser) isDeclAt(j int) bool {
	decl, _ := p.declKind(j)
	return decl
}

// declStmt parses Type a = 1, b; after an optional const.
func (p *Parser) declStmt(pos Pos, isConst bool) *DeclStmt {
	s := p.localDecl(pos)
	s.Const = isConst
	p.want(_Semi)
	return s
}

// localDecl parses Type a = 1, b without the terminating semicolon.
func (p *Parser) localDecl(pos Pos) *DeclStmt {
	s := &DeclStmt{}
	s.pos = pos
	s.Type = p.type_()
	s.Vars = p.varSpecs()
	return s
}

// funcStmt parses a local function declaration after its modifiers.
func (p *Parser) funcStmt(pos Pos, mods Modifiers) *FuncStmt {
	s := &FuncStmt{Mods: mods}
	s.pos = pos
	s.Result = p.type_()
	s.Name = p.name()
	s.TypeParams = p.typeParams()
	s.Params = p.paramList(_Lparen, _Rparen)
	p.constraints()
	s.Body, s.ExprBody = p.funcBody()
	if s.Body == nil && s.ExprBody == nil {
		p.syntaxErrorAt(pos, "local function "+s.Name.Value+" has no body")
	}
	return s
}

// exprStmt parses an expression statement.
func (p *Parser) exprStmt() Stmt {
	s := &ExprStmt{}
	s.pos = p.pos
	s.X = p.expr()
	p.want(_Semi)
	return s
}

// blockStmt parses { stmts... }
func (p *Parser) blockStmt() *BlockStmt {
	b := &BlockStmt{}
	b.pos = p.pos

	p.want(_Lbrace)
	for !p.done(_Rbrace) {
		start := p.i
		b.Stmts = append(b.Stmts, p.stmt())
		p.progress(start)
	}
	b.Rbrace = p.pos
	p.want(_Rbrace)
	return b
}

// parenExpr parses ( expr ).
func (p *Parser) parenExpr() Expr {
	p.want(_Lparen)
	x := p.expr()
	p.want(_Rparen)
	return x
}

// ifStmt parses: if (cond) stmt [else stmt]
func (p *Parser) ifStmt() Stmt {
	s := &IfStmt{}
	s.pos = p.pos
	p.want(_If)
	s.Cond = p.parenExpr()
	s.Then = p.stmt()
	if p.got(_Else) {
		s.Else = p.stmt()
	}
	return s
}

// switchStmt parses: switch (tag) { case x: ... default: ... }
func (p *Parser) switchStmt() Stmt {
	s := &SwitchStmt{}
	s.pos = p.pos
	p.want(_Switch)
	s.Tag = p.parenExpr()
	p.want(_Lbrace)
	for !p.done(_Rbrace) {
		start := p.i
		s.Sections = append(s.Sections, p.caseSection())
		p.progress(start)
	}
	p.want(_Rbrace)
	return s
}

func (p *Parser) isCaseLabel() bool {
	return p.tok == _Case || p.tok == _Default && p.peek(1) == _Colon
}

// caseSection parses one or more labels followed by statements.
func (p *Parser) caseSection() *CaseSection {
	sec := &CaseSection{}
	sec.pos = p.pos
	if !p.isCaseLabel() {
		p.syntaxError("expected case or default, found " + p.describe())
	}
	for p.isCaseLabel() {
		l := &CaseLabel{}
		l.pos = p.pos
		if p.got(_Case) {
			l.Value = p.expr()
			if p.isContextual("when") {
				p.next()
				l.Guard = p.expr()
			}
		} else {
			p.next() // default
		}
		p.want(_Colon)
		sec.Labels = append(sec.Labels, l)
	}
	for !p.done(_Rbrace) && !p.isCaseLabel() {
		start := p.i
		sec.Stmts = append(sec.Stmts, p.stmt())
		p.progress(start)
	}
	return sec
}

// forStmt parses: for (init; cond; post) stmt
func (p *Parser) forStmt() Stmt {
	s := &ForStmt{}
	s.pos = p.pos
	p.want(_For)
	p.want(_Lparen)

	if p.tok != _Semi {
		if p.isDeclAt(p.i) {
			s.Init = []Stmt{p.localDecl(p.pos)}
		} else {
			for {
				es := &ExprStmt{}
				es.pos = p.pos
				es.X = p.expr()
				s.Init = append(s.Init, es)
				if !p.got(_Comma) {
					break
				}
			}
		}
	}
	p.want(_Semi)
	if p.tok != _Semi {
		s.Cond = p.expr()
	}
	p.want(_Semi)
	if p.tok != _Rparen {
		s.Post = p.exprList()
	}
	p.want(_Rparen)
	s.Body = p.stmt()
	return s
}

// foreachStmt parses: foreach (Type name in expr) stmt
func (p *Parser) foreachStmt() Stmt {
	s := &ForeachStmt{}
	s.pos = p.pos
	p.want(_Foreach)
	p.want(_Lparen)
	s.Type = p.type_()
	if p.tok == _Lparen {
		p.syntaxError("deconstruction in foreach is not supported")
	}
	s.Name = p.name()
	p.want(_In)
	s.X = p.expr()
	p.want(_Rparen)
	s.Body = p.stmt()
	return s
}

// whileStmt parses: while (cond) stmt
func (p *Parser) whileStmt() Stmt {
	s := &WhileStmt{}
	s.pos = p.pos
	p.want(_While)
	s.Cond = p.parenExpr()
	s.Body = p.stmt()
	return s
}

// doStmt parses: do stmt while (cond);
func (p *Parser) doStmt() Stmt {
	s := &DoStmt{}
	s.pos = p.pos
	p.want(_Do)
	s.Body = p.stmt()
	p.want(_While)
	s.Cond = p.parenExpr()
	p.want(_Semi)
	return s
}

// branchStmt parses: break; or continue;
func (p *Parser) branchStmt() Stmt {
	s := &BranchStmt{Tok: p.tok}
	s.pos = p.pos
	p.next()
	p.want(_Semi)
	return s
}

// returnStmt parses: return [expr];
func (p *Parser) returnStmt() Stmt {
	s := &ReturnStmt{}
	s.pos = p.pos
	p.want(_Return)
	if p.tok != _Semi {
		s.Result = p.expr()
	}
	p.want(_Semi)
	return s
}

// throwStmt parses: throw [expr];
func (p *Parser) throwStmt() Stmt {
	s := &ThrowStmt{}
	s.pos = p.pos
	p.want(_Throw)
	if p.tok != _Semi {
		s.X = p.expr()
	}
	p.want(_Semi)
	return s
}

// tryStmt parses: try block catch... [finally block]
func (p *Parser) tryStmt() Stmt {
	s := &TryStmt{}
	s.pos = p.pos
	p.want(_Try)
	s.Body = p.blockStmt()
	for p.tok == _Catch {
		c := &CatchClause{}
		c.pos = p.pos
		p.next()
		if p.got(_Lparen) {
			c.Type = p.type_()
			if p.tok == _Name {
				c.Name = p.name()
			}
			p.want(_Rparen)
		}
		if p.isContextual("when") {
			p.next()
			c.Filter = p.parenExpr()
		}
		c.Body = p.blockStmt()
		s.Catches = append(s.Catches, c)
	}
	if p.got(_Finally) {
		s.Finally = p.blockStmt()
	}
	if len(s.Catches) == 0 && s.Finally == nil {
		p.syntaxErrorAt(s.pos, "try statement needs a catch or finally clause")
	}
	return s
}

// usingStmt parses: using (decl | expr) stmt | using Type x = e;
func (p *Parser) usingStmt() Stmt {
	pos := p.pos
	p.want(_Using)
	if p.tok != _Lparen {
		d := p.declStmt(pos, false)
		d.Using = true
		return d
	}

	s := &UsingStmt{}
	s.pos = pos
	p.want(_Lparen)
	if p.isDeclAt(p.i) {
		s.Decl = p.localDecl(p.pos)
	} else {
		s.X = p.expr()
	}
	p.want(_Rparen)
	s.Body = p.stmt()
	return s
}

// lockStmt parses: lock (expr) stmt
func (p *Parser) lockStmt() Stmt {
	s := &LockStmt{}
	s.pos = p.pos
	p.want(_Lock)
	s.X = p.parenExpr()
	s.Body = p.stmt()
	return s
}

// yieldStmt parses: yield return expr; | yield break;
func (p *Parser) yieldStmt() Stmt {
	s := &YieldStmt{}
	s.pos = p.pos
	p.next() // yield
	if p.got(_Return) {
		s.X = p.expr()
	} else {
		p.want(_Break)
	}
	p.want(_Semi)
	return s
}

// qualifiedName parses A.B.C as nested SelectorExprs.
func (p *Parser) qualifiedName() Expr {
	var x Expr = p.name()
	for p.tok == _Dot {
		sel := &SelectorExpr{X: x}
		sel.pos = x.Pos()
		p.next()
		sel.Sel = p.name()
		x = sel
	}
	return x
}

// name parses an identifier.
func (p *Parser) name() *Name {
	n := &Name{Value: p.lit}
	n.pos = p.pos
	if p.tok != _Name {
		p.syntaxError("expected name, found " + p.describe())
		n.Value = "_"
		if p.tok != _EOF && p.tok != _Rbrace && p.tok != _Semi {
			p.next()
		}
		return n
	}
	p.next()
	return n
}
