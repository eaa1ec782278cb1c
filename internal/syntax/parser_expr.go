package syntax

import "strings"

// ----------------------------------------------------------------------------
// Expressions

// expr parses an expression: a conditional expression, an assignment or a
// lambda.
func (p *Parser) expr() Expr {
	if !p.enter() {
		p.leave()
		return p.badExpr()
	}
	defer p.leave()

	x := p.condExpr()

	op := p.tok
	if p.tok == _Gtr && p.peek(1) == _Geq && p.adjacent() {
		op = _ShrAssign
		p.next()
	}
	if !op.IsAssignOp() {
		return x
	}
	a := &AssignExpr{Op: op, LHS: x}
	a.pos = x.Pos()
	p.next()
	a.RHS = p.expr() // right associative
	return a
}

// condExpr parses cond ? x : y, or a binary expression.
func (p *Parser) condExpr() Expr {
	x := p.binaryExpr(0)
	if p.tok != _Question {
		return x
	}
	c := &CondExpr{Cond: x}
	c.pos = x.Pos()
	p.next()
	c.X = p.expr()
	p.want(_Colon)
	c.Y = p.expr()
	return c
}

// binaryExpr parses a binary expression using precedence climbing.
func (p *Parser) binaryExpr(prec int) Expr {
	x := p.unaryExpr()
	for {
		op, oprec, width := p.binaryOp()
		if oprec <= prec {
			return x
		}
		for i := 0; i < width; i++ {
			p.next()
		}

		switch op {
		case _Is:
			x = p.isExpr(x)
		case _As:
			t := &Operation{Op: op, X: x}
			t.pos = x.Pos()
			t.Y = p.typeOperand()
			x = t
		case _Coalesce:
			t := &Operation{Op: op, X: x}
			t.pos = x.Pos()
			t.Y = p.binaryExpr(oprec - 1) // right associative
			x = t
		default:
			t := &Operation{Op: op, X: x}
			t.pos = x.Pos()
			t.Y = p.binaryExpr(oprec)
			x = t
		}
	}
}

// binaryOp returns the binary operator at the current position, its
// precedence and the number of tokens it spans. Two adjacent '>' form a
// right shift.
func (p *Parser) binaryOp() (Token, int, int) {
	if p.tok == _Gtr && p.adjacent() {
		switch p.peek(1) {
		case _Gtr:
			return _Shr, _Shr.Precedence(), 2
		case _Geq:
			return _ShrAssign, 0, 0
		}
	}
	return p.tok, p.tok.Precedence(), 1
}

// adjacent reports whether the next token starts right after the current
// one-character token.
func (p *Parser) adjacent() bool {
	a, b := p.pos, p.at(p.i+1).pos
	return a.line == b.line && b.col == a.col+1
}

// isExpr parses the pattern after 'is':
//
//	x is null | x is not null | x is 3 | x is T | x is T name
func (p *Parser) isExpr(x Expr) Expr {
	e := &IsExpr{X: x}
	e.pos = x.Pos()
	if p.isContextual("not") && p.peek(1) != _Rparen && p.peek(1) != _Semi {
		e.Not = true
		p.next()
	}
	switch p.tok {
	case _Null, _True, _False, _Literal, _Interp, _Sub:
		e.Pattern = p.unaryExpr()
	default:
		e.Pattern = p.typeOperand()
		if p.tok == _Name && p.lit != "when" && p.lit != "and" && p.lit != "or" {
			e.Var = p.name()
		}
	}
	return e
}

// unaryExpr parses prefix operators, casts and throw expressions.
func (p *Parser) unaryExpr() Expr {
	if !p.enter() {
		p.leave()
		return p.badExpr()
	}
	defer p.leave()

	switch p.tok {
	case _Add, _Sub, _Not, _Tilde, _Inc, _Dec:
		x := &Operation{Op: p.tok}
		x.pos = p.pos
		p.next()
		x.X = p.unaryExpr()
		return x

	case _Lparen:
		if p.isCast() {
			x := &CastExpr{}
			x.pos = p.pos
			p.next()
			x.Type = p.type_()
			p.want(_Rparen)
			x.X = p.unaryExpr()
			return x
		}

	case _Throw:
		x := &ThrowExpr{}
		x.pos = p.pos
		p.next()
		x.X = p.binaryExpr(0)
		return x

	case _Name:
		if p.lit == "await" && canStartOperand(p.peek(1)) {
			p.syntaxError("await expressions are not supported")
			p.next()
			return p.unaryExpr()
		}
	}

	return p.primaryExpr()
}

// isCast reports whether the '(' at the current position starts a cast.
// A parenthesized type is a cast if it names a predefined type, or if the
// token after ')' can only start an operand.
func (p *Parser) isCast() bool {
	end, ok := p.scanType(p.i+1, true)
	if !ok || p.at(end).tok != _Rparen {
		return false
	}
	if p.at(p.i + 1).tok.IsPredefinedType() {
		return true
	}
	switch t := p.at(end + 1).tok; t {
	case _Name, _Literal, _Interp, _Lparen, _Not, _Tilde, _True, _False, _Null,
		_This, _Base, _New, _Typeof, _Default, _Checked, _Unchecked, _Delegate:
		return true
	default:
		return t.IsPredefinedType()
	}
}

// canStartOperand reports whether t can begin a unary expression.
func canStartOperand(t Token) bool {
	switch t {
	case _Name, _Literal, _Interp, _Lparen, _Add, _Sub, _Not, _Tilde, _Inc, _Dec,
		_True, _False, _Null, _This, _Base, _New, _Typeof, _Default, _Delegate,
		_Checked, _Unchecked, _Throw:
		return true
	}
	return t.IsPredefinedType()
}

// primaryExpr parses an operand followed by any number of member
// accesses, calls, element accesses and postfix operators.
func (p *Parser) primaryExpr() Expr {
	x := p.operand()

	for {
		switch p.tok {
		case _Dot, _QDot:
			t := &SelectorExpr{X: x, NullCond: p.tok == _QDot}
			t.pos = x.Pos()
			p.next()
			t.Sel = p.simpleName()
			x = t

		case _Lparen:
			t := &CallExpr{Fun: x}
			t.pos = x.Pos()
			t.Args = p.argList(_Lparen, _Rparen)
			x = t

		case _Lbrack:
			t := &IndexExpr{X: x}
			t.pos = x.Pos()
			t.Args = p.argList(_Lbrack, _Rbrack)
			x = t

		case _Question:
			// a?[i]
			if p.peek(1) != _Lbrack || !p.adjacent() {
				return x
			}
			p.next()
			t := &IndexExpr{X: x, NullCond: true}
			t.pos = x.Pos()
			t.Args = p.argList(_Lbrack, _Rbrack)
			x = t

		case _Inc, _Dec:
			t := &Operation{Op: p.tok, X: x, Postfix: true}
			t.pos = x.Pos()
			p.next()
			x = t

		case _Not:
			// null-forgiving x! has no runtime effect
			switch p.peek(1) {
			case _Dot, _QDot, _Lbrack, _Rparen, _Rbrack, _Semi, _Comma:
				p.next()
			default:
				return x
			}

		default:
			return x
		}
	}
}

// operand parses a primary operand.
func (p *Parser) operand() Expr {
	switch p.tok {
	case _Name:
		switch {
		case p.peek(1) == _Arrow:
			return p.simpleLambda(p.pos, false)
		case p.lit == "async" && p.peek(1) == _Name && p.peek(2) == _Arrow:
			pos := p.pos
			p.next()
			return p.simpleLambda(pos, true)
		case p.lit == "async" && p.peek(1) == _Lparen && p.isParenLambdaAt(p.i+1):
			pos := p.pos
			p.next()
			return p.parenLambda(pos, true)
		}
		return p.simpleName()

	case _Literal:
		x := &BasicLit{Value: p.lit, Kind: p.at(p.i).kind}
		x.pos = p.pos
		p.next()
		return x

	case _Interp:
		return p.interpolated()

	case _True, _False, _Null:
		x := &KeywordLit{Tok: p.tok}
		x.pos = p.pos
		p.next()
		return x

	case _This:
		x := &ThisExpr{}
		x.pos = p.pos
		p.next()
		return x

	case _Base:
		x := &BaseExpr{}
		x.pos = p.pos
		p.next()
		return x

	case _Lparen:
		if p.isParenLambdaAt(p.i) {
			return p.parenLambda(p.pos, false)
		}
		x := &ParenExpr{}
		x.pos = p.pos
		p.next()
		x.X = p.expr()
		if p.tok == _Comma {
			p.syntaxError("tuple expressions are not supported")
			p.advance()
			return x
		}
		p.want(_Rparen)
		return x

	case _New:
		return p.newExpr()

	case _Typeof:
		x := &TypeOfExpr{}
		x.pos = p.pos
		p.next()
		p.want(_Lparen)
		x.Type = p.type_()
		p.want(_Rparen)
		return x

	case _Default:
		x := &DefaultExpr{}
		x.pos = p.pos
		p.next()
		if p.got(_Lparen) {
			x.Type = p.type_()
			p.want(_Rparen)
		}
		return x

	case _Delegate:
		// anonymous method: delegate (int x) { ... }
		l := &LambdaExpr{}
		l.pos = p.pos
		p.next()
		if p.tok == _Lparen {
			l.Params = p.paramList(_Lparen, _Rparen)
		}
		l.Block = p.blockStmt()
		return l

	case _Checked, _Unchecked:
		// integer overflow checking has no counterpart; keep the operand
		p.next()
		x := &ParenExpr{}
		x.pos = p.pos
		x.X = p.parenExpr()
		return x

	case _Sizeof, _Stackalloc:
		p.syntaxError(p.tok.String() + " expressions are not supported")

	case _Lbrack:
		p.syntaxError("collection expressions are not supported")

	default:
		if p.tok.IsPredefinedType() {
			x := &PredefinedType{Tok: p.tok}
			x.pos = p.pos
			p.next()
			return x
		}
		p.syntaxError("expected expression, found " + p.describe())
	}

	x := p.badExpr()
	p.advance()
	return x
}

// badExpr returns a placeholder for an expression that failed to parse.
func (p *Parser) badExpr() Expr {
	x := &Name{Value: "_"}
	x.pos = p.pos
	return x
}

// simpleName parses Name or Name<TypeArgs> in expression context.
func (p *Parser) simpleName() Expr {
	n := p.name()
	if p.tok == _Lss && p.genericFollows() {
		g := &GenericName{Name: n}
		g.pos = n.pos
		g.Args = p.typeArgs()
		return g
	}
	return n
}

// genericFollows decides whether the '<' at the current position opens a
// type argument list. It does if the list scans as types and the token
// after the closing '>' is one of ( ) ] } : ; , . ? == != | ^ && || & [.
func (p *Parser) genericFollows() bool {
	end, ok := p.scanTypeArgs(p.i)
	if !ok {
		return false
	}
	switch p.at(end).tok {
	case _Lparen, _Rparen, _Rbrack, _Rbrace, _Colon, _Semi, _Comma, _Dot, _QDot,
		_Question, _Eql, _Neq, _Or, _Xor, _AndAnd, _OrOr, _And, _Lbrack, _EOF:
		return true
	}
	return false
}

// isParenLambdaAt reports whether the parenthesized group starting at j is
// followed by '=>'.
func (p *Parser) isParenLambdaAt(j int) bool {
	depth := 0
	for ; ; j++ {
		switch p.at(j).tok {
		case _Lparen:
			depth++
		case _Rparen:
			depth--
			if depth == 0 {
				return p.at(j+1).tok == _Arrow
			}
		case _EOF, _Semi, _Lbrace, _Rbrace:
			return false
		}
	}
}

// simpleLambda parses x => body.
func (p *Parser) simpleLambda(pos Pos, async bool) Expr {
	l := &LambdaExpr{Async: async}
	l.pos = pos
	prm := &Param{}
	prm.pos = p.pos
	prm.Name = p.name()
	l.Params = []*Param{prm}
	p.want(_Arrow)
	p.lambdaBody(l)
	return l
}

// parenLambda parses (params) => body.
func (p *Parser) parenLambda(pos Pos, async bool) Expr {
	l := &LambdaExpr{Async: async}
	l.pos = pos
	p.want(_Lparen)
	for !p.done(_Rparen) {
		l.Params = append(l.Params, p.param(true))
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Rparen)
	p.want(_Arrow)
	p.lambdaBody(l)
	return l
}

func (p *Parser) lambdaBody(l *LambdaExpr) {
	if p.tok == _Lbrace {
		l.Block = p.blockStmt()
		return
	}
	l.Body = p.expr()
}

// interpolated converts the current interpolated string token into an
// InterpolatedString, parsing each hole as an expression.
func (p *Parser) interpolated() Expr {
	x := &InterpolatedString{}
	x.pos = p.pos
	for _, seg := range p.at(p.i).segs {
		part := &InterpPart{}
		part.pos = seg.Pos
		if !seg.Hole {
			part.Text = seg.Text
		} else {
			if strings.TrimSpace(seg.Text) == "" {
				p.syntaxErrorAt(seg.Pos, "empty interpolation hole")
				part.X = p.badExpr()
			} else {
				part.X = p.subExpr(seg.Text, seg.Pos)
			}
			if seg.Align != "" {
				part.Align = p.subExpr(seg.Align, seg.AlignPos)
			}
			part.Format = seg.Format
		}
		x.Parts = append(x.Parts, part)
	}
	p.next()
	return x
}

// newExpr parses object, array and anonymous object creation.
func (p *Parser) newExpr() Expr {
	pos := p.pos
	p.want(_New)

	switch p.tok {
	case _Lbrace:
		return p.anonNew(pos)

	case _Lbrack:
		// new[] { ... }
		x := &ArrayNewExpr{}
		x.pos = pos
		p.rankSpec()
		x.Init = p.initExpr()
		return x

	case _Lparen:
		p.syntaxError("target-typed new expressions are not supported")
		x := p.badExpr()
		p.advance()
		return x
	}

	typ := p.namedType()
	if p.tok == _Question {
		// new T?(v)
		n := &NullableType{Elem: typ}
		n.pos = typ.Pos()
		p.next()
		typ = n
	}

	if p.tok == _Lbrack {
		x := &ArrayNewExpr{Elem: typ}
		x.pos = pos
		if p.peek(1) == _Rbrack || p.peek(1) == _Comma {
			// new T[] { ... }
			p.rankSpec()
			x.Elem = p.arraySuffixes(x.Elem)
			x.Init = p.initExpr()
			return x
		}
		p.next()
		x.Sizes = p.exprList()
		p.want(_Rbrack)
		x.Elem = p.arraySuffixes(x.Elem)
		if p.tok == _Lbrace {
			x.Init = p.initExpr()
		}
		return x
	}

	x := &NewExpr{Type: typ}
	x.pos = pos
	switch p.tok {
	case _Lparen:
		x.Args = p.argList(_Lparen, _Rparen)
		if p.tok == _Lbrace {
			x.Init = p.initExpr()
		}
	case _Lbrace:
		x.Init = p.initExpr()
	default:
		p.syntaxError("expected ( or { after new " + typeString(typ) + ", found " + p.describe())
	}
	return x
}

// rankSpec parses [ , , ] and returns the rank.
func (p *Parser) rankSpec() int {
	rank := 1
	p.want(_Lbrack)
	for p.got(_Comma) {
		rank++
	}
	p.want(_Rbrack)
	return rank
}

// arraySuffixes wraps elem in an ArrayType for each rank specifier that
// follows.
func (p *Parser) arraySuffixes(elem Expr) Expr {
	for p.tok == _Lbrack && (p.peek(1) == _Rbrack || p.peek(1) == _Comma) {
		t := &ArrayType{Elem: elem}
		t.pos = elem.Pos()
		t.Rank = p.rankSpec()
		elem = t
	}
	return elem
}

// anonNew parses the body of new { a = 1, b }.
func (p *Parser) anonNew(pos Pos) Expr {
	x := &AnonNewExpr{}
	x.pos = pos
	p.want(_Lbrace)
	for !p.done(_Rbrace) {
		fld := &AnonField{}
		fld.pos = p.pos
		if p.tok == _Name && p.peek(1) == _Assign {
			fld.Name = p.name()
			p.next()
		}
		fld.X = p.expr()
		x.Fields = append(x.Fields, fld)
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Rbrace)
	return x
}

// initExpr parses an array, object or collection initializer { ... }.
func (p *Parser) initExpr() *InitExpr {
	x := &InitExpr{}
	x.pos = p.pos
	p.want(_Lbrace)
	for !p.done(_Rbrace) {
		if p.tok == _Lbrace {
			x.Elems = append(x.Elems, p.initExpr())
		} else {
			x.Elems = append(x.Elems, p.expr())
		}
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Rbrace)
	return x
}

// argList parses an argument list between open and close.
func (p *Parser) argList(open, close Token) []*Arg {
	p.want(open)
	var args []*Arg
	for !p.done(close) {
		a := &Arg{}
		a.pos = p.pos
		if p.tok == _Name && p.peek(1) == _Colon {
			a.Name = p.name()
			p.next()
		}
		switch p.tok {
		case _Ref, _Out, _In:
			a.Mod = p.tok
			p.next()
		}
		if a.Mod == _Out && p.isOutVarDecl() {
			p.syntaxError("out variable declarations are not supported")
		}
		a.X = p.expr()
		args = append(args, a)
		if !p.got(_Comma) {
			break
		}
	}
	p.want(close)
	return args
}

// isOutVarDecl reports whether the tokens at the current position look like
// the 'var x' of out var x.
func (p *Parser) isOutVarDecl() bool {
	end, ok := p.scanType(p.i, false)
	if !ok || p.at(end).tok != _Name {
		return false
	}
	t := p.at(end + 1).tok
	return t == _Comma || t == _Rparen
}

// exprList parses a comma-separated expression list.
func (p *Parser) exprList() []Expr {
	var list []Expr
	for {
		list = append(list, p.expr())
		if !p.got(_Comma) {
			return list
		}
	}
}

// ----------------------------------------------------------------------------
// Types

// type_ parses a type in declaration context: a named or predefined type
// followed by any number of ? and [] suffixes.
func (p *Parser) type_() Expr {
	return p.typeSuffixes(p.namedType(), true)
}

// typeOperand parses the type operand of is and as. A trailing '?' is only
// taken as nullable if it cannot start the branches of a conditional.
func (p *Parser) typeOperand() Expr {
	return p.typeSuffixes(p.namedType(), false)
}

func (p *Parser) typeSuffixes(t Expr, decl bool) Expr {
	for {
		switch {
		case p.tok == _Question && (decl || !canStartOperand(p.peek(1))):
			n := &NullableType{Elem: t}
			n.pos = t.Pos()
			p.next()
			t = n
		case p.tok == _Lbrack && (p.peek(1) == _Rbrack || p.peek(1) == _Comma):
			a := &ArrayType{Elem: t}
			a.pos = t.Pos()
			a.Rank = p.rankSpec()
			t = a
		default:
			return t
		}
	}
}

// namedType parses a predefined type or a possibly qualified, possibly
// generic type name.
func (p *Parser) namedType() Expr {
	if p.tok.IsPredefinedType() {
		t := &PredefinedType{Tok: p.tok}
		t.pos = p.pos
		p.next()
		return t
	}
	if p.tok == _Lparen {
		p.syntaxError("tuple types are not supported")
	}
	var x Expr = p.typeName()
	for p.tok == _Dot && p.peek(1) == _Name {
		sel := &SelectorExpr{X: x}
		sel.pos = x.Pos()
		p.next()
		sel.Sel = p.typeName()
		x = sel
	}
	return x
}

func (p *Parser) typeName() Expr {
	n := p.name()
	if p.tok != _Lss {
		return n
	}
	g := &GenericName{Name: n}
	g.pos = n.pos
	g.Args = p.typeArgs()
	return g
}

// typeArgs parses <T, U>.
func (p *Parser) typeArgs() []Expr {
	p.want(_Lss)
	var args []Expr
	for {
		args = append(args, p.type_())
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Gtr)
	return args
}

// scanType reports whether a type starts at token index j without
// consuming anything. It returns the index of the first token after the
// type. If nullable is set, '?' suffixes are accepted.
func (p *Parser) scanType(j int, nullable bool) (int, bool) {
	switch t := p.at(j).tok; {
	case t.IsPredefinedType():
		j++
	case t == _Name:
		j++
		if p.at(j).tok == _Lss {
			var ok bool
			if j, ok = p.scanTypeArgs(j); !ok {
				return j, false
			}
		}
		for p.at(j).tok == _Dot && p.at(j+1).tok == _Name {
			j += 2
			if p.at(j).tok == _Lss {
				var ok bool
				if j, ok = p.scanTypeArgs(j); !ok {
					return j, false
				}
			}
		}
	default:
		return j, false
	}

	for {
		switch {
		case nullable && p.at(j).tok == _Question:
			j++
		case p.at(j).tok == _Lbrack && (p.at(j+1).tok == _Rbrack || p.at(j+1).tok == _Comma):
			j++
			for p.at(j).tok == _Comma {
				j++
			}
			if p.at(j).tok != _Rbrack {
				return j, false
			}
			j++
		default:
			return j, true
		}
	}
}

// scanTypeArgs scans a type argument list starting at the '<' at index j.
func (p *Parser) scanTypeArgs(j int) (int, bool) {
	j++
	for {
		var ok bool
		if j, ok = p.scanType(j, true); !ok {
			return j, false
		}
		switch p.at(j).tok {
		case _Comma:
			j++
		case _Gtr:
			return j + 1, true
		default:
			return j, false
		}
	}
}
