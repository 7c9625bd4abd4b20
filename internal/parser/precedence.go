package parser

import "github.com/vaultjs/vaultjs/internal/lexer"

type precedence int

const (
	precLowest precedence = iota
	precAssign
	precConditional
	precNullish
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
	precCall
)

var binaryPrecedence = map[lexer.Type]precedence{
	lexer.OROR:   precLogicalOr,
	lexer.ANDAND: precLogicalAnd,
	lexer.QQ:     precNullish,

	lexer.PIPE:  precBitOr,
	lexer.CARET: precBitXor,
	lexer.AMP:   precBitAnd,

	lexer.EQ:  precEquality,
	lexer.NE:  precEquality,
	lexer.SEQ: precEquality,
	lexer.SNE: precEquality,

	lexer.LT:     precRelational,
	lexer.GT:     precRelational,
	lexer.LE:     precRelational,
	lexer.GE:     precRelational,
	lexer.INSTOF: precRelational,
	lexer.IN:     precRelational,

	lexer.SHL:  precShift,
	lexer.SHR:  precShift,
	lexer.USHR: precShift,

	lexer.PLUS:  precAdditive,
	lexer.MINUS: precAdditive,

	lexer.STAR:  precMultiplicative,
	lexer.SLASH: precMultiplicative,
	lexer.PCT:   precMultiplicative,

	lexer.POW: precExponent,
}

var assignOps = map[lexer.Type]bool{
	lexer.ASSIGN: true, lexer.PLUSEQ: true, lexer.MINUSEQ: true,
	lexer.STAREQ: true, lexer.SLASHEQ: true, lexer.PCTEQ: true,
	lexer.POWEQ: true, lexer.SHLEQ: true, lexer.SHREQ: true,
	lexer.USHREQ: true, lexer.AMPEQ: true, lexer.PIPEEQ: true,
	lexer.CARETEQ: true, lexer.ANDEQ2: true, lexer.OREQ2: true,
	lexer.QQEQ: true,
}

// postfixPrecedence covers the member-access/call/postfix-update chain:
// these infix forms are dispatched directly by parseInfix's type switch
// rather than through binaryPrecedence, but still need a precedence value
// high enough that the main parseExpression loop keeps calling into them.
var postfixPrecedence = map[lexer.Type]precedence{
	lexer.DOT:           precCall,
	lexer.QDOT:          precCall,
	lexer.LBRACKET:      precCall,
	lexer.LPAREN:        precCall,
	lexer.TEMPLATE_FULL: precCall,
	lexer.TEMPLATE_HEAD: precCall,
	lexer.INC:           precPostfix,
	lexer.DEC:           precPostfix,
}

func (p *Parser) peekPrecedence() precedence {
	if (p.peek.Type == lexer.INC || p.peek.Type == lexer.DEC) && p.peek.NewlineBefore {
		return precLowest
	}
	if pr, ok := binaryPrecedence[p.peek.Type]; ok {
		return pr
	}
	if pr, ok := postfixPrecedence[p.peek.Type]; ok {
		return pr
	}
	if assignOps[p.peek.Type] {
		return precAssign
	}
	if p.peek.Type == lexer.QUESTION {
		return precConditional
	}
	return precLowest
}
