// Package parser builds a typed ast.Message/Service/Action from a token
// stream.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ros2rust/ros2gen/internal/idl/ast"
	"github.com/ros2rust/ros2gen/internal/idl/lexer"
)

// Error reports why parsing failed. Kind is one of: UnexpectedToken,
// UnexpectedEOF, InvalidInteger, InvalidFloat, UnknownType, LexerError.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func unexpectedToken(expected, got string) error {
	return &Error{Kind: "UnexpectedToken", Message: fmt.Sprintf("expected %s, got %s", expected, got)}
}

func unexpectedEOF() error {
	return &Error{Kind: "UnexpectedEOF", Message: "unexpected end of input"}
}

func invalidInteger(text string) error {
	return &Error{Kind: "InvalidInteger", Message: fmt.Sprintf("invalid integer literal: %s", text)}
}

func invalidFloat(text string) error {
	return &Error{Kind: "InvalidFloat", Message: fmt.Sprintf("invalid float literal: %s", text)}
}

func unknownType(text string) error {
	return &Error{Kind: "UnknownType", Message: fmt.Sprintf("unknown type: %s", text)}
}

func lexerError(message string) error {
	return &Error{Kind: "LexerError", Message: message}
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) current() *lexer.Token {
	if p.pos < len(p.tokens) {
		return &p.tokens[p.pos]
	}
	return nil
}

func (p *parser) advance() *lexer.Token {
	t := p.current()
	if t != nil {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind lexer.Kind, describe string) (*lexer.Token, error) {
	t := p.advance()
	if t == nil {
		return nil, unexpectedEOF()
	}
	if t.Kind != kind {
		return nil, unexpectedToken(describe, t.Text)
	}
	return t, nil
}

func primitiveFor(kind lexer.Kind) (ast.Primitive, bool) {
	switch kind {
	case lexer.KindBool:
		return ast.Bool, true
	case lexer.KindByte:
		return ast.Byte, true
	case lexer.KindChar:
		return ast.Char, true
	case lexer.KindInt8:
		return ast.Int8, true
	case lexer.KindUInt8:
		return ast.UInt8, true
	case lexer.KindInt16:
		return ast.Int16, true
	case lexer.KindUInt16:
		return ast.UInt16, true
	case lexer.KindInt32:
		return ast.Int32, true
	case lexer.KindUInt32:
		return ast.UInt32, true
	case lexer.KindInt64:
		return ast.Int64, true
	case lexer.KindUInt64:
		return ast.UInt64, true
	case lexer.KindFloat32:
		return ast.Float32, true
	case lexer.KindFloat64:
		return ast.Float64, true
	default:
		return 0, false
	}
}

func (p *parser) parseInteger(text string, kind lexer.Kind) (int64, error) {
	var v int64
	var err error
	switch kind {
	case lexer.KindHexInteger:
		v, err = strconv.ParseInt(stripSignedPrefix(text, 2), 16, 64)
	case lexer.KindBinaryInteger:
		v, err = strconv.ParseInt(stripSignedPrefix(text, 2), 2, 64)
	case lexer.KindOctalInteger:
		v, err = strconv.ParseInt(stripSignedPrefix(text, 2), 8, 64)
	case lexer.KindDecimalInteger:
		v, err = strconv.ParseInt(text, 10, 64)
	default:
		return 0, invalidInteger(text)
	}
	if err != nil {
		return 0, invalidInteger(text)
	}
	return v, nil
}

// stripSignedPrefix drops a leading "0x"/"0b"/"0o" (n=2 chars) prefix,
// preserving any sign that preceded it.
func stripSignedPrefix(text string, n int) string {
	sign := ""
	if strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-") {
		sign = text[:1]
		text = text[1:]
	}
	return sign + text[n:]
}

func (p *parser) parseFieldType() (ast.FieldType, error) {
	tok := p.advance()
	if tok == nil {
		return ast.FieldType{}, unexpectedEOF()
	}

	var base ast.FieldType

	if prim, ok := primitiveFor(tok.Kind); ok {
		base = ast.FieldType{Kind: ast.KindPrimitive, Primitive: prim}
	} else {
		switch tok.Kind {
		case lexer.KindString:
			if p.current() != nil && p.current().Kind == lexer.KindLessEqual {
				p.advance()
				sizeTok := p.advance()
				if sizeTok == nil {
					return ast.FieldType{}, unexpectedEOF()
				}
				size, err := p.parseInteger(sizeTok.Text, sizeTok.Kind)
				if err != nil {
					return ast.FieldType{}, err
				}
				base = ast.FieldType{Kind: ast.KindBoundedString, BoundSize: int(size)}
			} else {
				base = ast.FieldType{Kind: ast.KindString}
			}

		case lexer.KindWString:
			if p.current() != nil && p.current().Kind == lexer.KindLessEqual {
				p.advance()
				sizeTok := p.advance()
				if sizeTok == nil {
					return ast.FieldType{}, unexpectedEOF()
				}
				size, err := p.parseInteger(sizeTok.Text, sizeTok.Kind)
				if err != nil {
					return ast.FieldType{}, err
				}
				base = ast.FieldType{Kind: ast.KindBoundedWString, BoundSize: int(size)}
			} else {
				base = ast.FieldType{Kind: ast.KindWString}
			}

		case lexer.KindIdentifier:
			name := tok.Text
			if p.current() != nil && p.current().Kind == lexer.KindSlash {
				p.advance()
				typeName, err := p.expect(lexer.KindIdentifier, "identifier")
				if err != nil {
					return ast.FieldType{}, err
				}
				base = ast.FieldType{Kind: ast.KindNamespacedType, Package: name, Name: typeName.Text}
			} else {
				base = ast.FieldType{Kind: ast.KindNamespacedType, Name: name}
			}

		default:
			return ast.FieldType{}, unknownType(tok.Text)
		}
	}

	if p.current() == nil || p.current().Kind != lexer.KindLBracket {
		return base, nil
	}
	p.advance() // consume '['

	cur := p.current()
	if cur == nil {
		return ast.FieldType{}, unexpectedEOF()
	}

	switch cur.Kind {
	case lexer.KindRBracket:
		p.advance()
		elem := base
		return ast.FieldType{Kind: ast.KindSequence, Element: &elem}, nil

	case lexer.KindLessEqual:
		p.advance()
		sizeTok := p.advance()
		if sizeTok == nil {
			return ast.FieldType{}, unexpectedEOF()
		}
		size, err := p.parseInteger(sizeTok.Text, sizeTok.Kind)
		if err != nil {
			return ast.FieldType{}, err
		}
		if _, err := p.expect(lexer.KindRBracket, "]"); err != nil {
			return ast.FieldType{}, err
		}
		elem := base
		return ast.FieldType{Kind: ast.KindBoundedSequence, Element: &elem, BoundSize: int(size)}, nil

	case lexer.KindDecimalInteger, lexer.KindHexInteger, lexer.KindBinaryInteger, lexer.KindOctalInteger:
		sizeTok := p.advance()
		size, err := p.parseInteger(sizeTok.Text, sizeTok.Kind)
		if err != nil {
			return ast.FieldType{}, err
		}
		if _, err := p.expect(lexer.KindRBracket, "]"); err != nil {
			return ast.FieldType{}, err
		}
		elem := base
		return ast.FieldType{Kind: ast.KindArray, Element: &elem, Size: int(size)}, nil

	default:
		return ast.FieldType{}, unexpectedToken("array size or ]", cur.Text)
	}
}

func (p *parser) parseConstantValue() (ast.ConstantValue, error) {
	tok := p.advance()
	if tok == nil {
		return ast.ConstantValue{}, unexpectedEOF()
	}

	switch tok.Kind {
	case lexer.KindDecimalInteger, lexer.KindHexInteger, lexer.KindBinaryInteger, lexer.KindOctalInteger:
		v, err := p.parseInteger(tok.Text, tok.Kind)
		if err != nil {
			return ast.ConstantValue{}, err
		}
		return ast.ConstantValue{Kind: ast.ConstInteger, Integer: v}, nil

	case lexer.KindFloatLiteral:
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return ast.ConstantValue{}, invalidFloat(tok.Text)
		}
		return ast.ConstantValue{Kind: ast.ConstFloat, Float: v}, nil

	case lexer.KindTrue:
		return ast.ConstantValue{Kind: ast.ConstBool, Bool: true}, nil

	case lexer.KindFalse:
		return ast.ConstantValue{Kind: ast.ConstBool, Bool: false}, nil

	case lexer.KindStringLiteral:
		s := strings.Trim(tok.Text, `"'`)
		return ast.ConstantValue{Kind: ast.ConstString, String: s}, nil

	default:
		return ast.ConstantValue{}, unexpectedToken("constant value", tok.Text)
	}
}

// isConstantName classifies a name following an '=': SCREAMING_SNAKE_CASE
// names are constants; anything else is a field with a default value.
func isConstantName(name string) bool {
	if name == "" {
		return false
	}
	sawLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			sawLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		} else if !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return sawLetter
}

func (p *parser) parseFieldOrConstant() (*ast.Field, *ast.Constant, error) {
	fieldType, err := p.parseFieldType()
	if err != nil {
		return nil, nil, err
	}
	nameTok, err := p.expect(lexer.KindIdentifier, "identifier")
	if err != nil {
		return nil, nil, err
	}
	name := nameTok.Text

	if p.current() == nil || p.current().Kind != lexer.KindEquals {
		return &ast.Field{Type: fieldType, Name: name}, nil, nil
	}
	p.advance() // consume '='
	value, err := p.parseConstantValue()
	if err != nil {
		return nil, nil, err
	}

	if isConstantName(name) {
		return nil, &ast.Constant{Type: fieldType, Name: name, Value: value}, nil
	}
	return &ast.Field{Type: fieldType, Name: name, DefaultValue: &value}, nil, nil
}

func (p *parser) parseMessageBody() (ast.Message, error) {
	msg := ast.Message{}
	for p.current() != nil && p.current().Kind != lexer.KindTripleDash {
		field, constant, err := p.parseFieldOrConstant()
		if err != nil {
			return ast.Message{}, err
		}
		if field != nil {
			msg.Fields = append(msg.Fields, *field)
		}
		if constant != nil {
			msg.Constants = append(msg.Constants, *constant)
		}
	}
	return msg, nil
}

func newParser(input string) (*parser, error) {
	tokens, err := lexer.Lex(input)
	if err != nil {
		return nil, lexerError(err.Error())
	}
	return &parser{tokens: tokens}, nil
}

// ParseMessage parses a complete .msg file body.
func ParseMessage(input string) (ast.Message, error) {
	p, err := newParser(input)
	if err != nil {
		return ast.Message{}, err
	}
	return p.parseMessageBody()
}

// ParseService parses a complete .srv file: request, "---", response.
func ParseService(input string) (ast.Service, error) {
	p, err := newParser(input)
	if err != nil {
		return ast.Service{}, err
	}
	request, err := p.parseMessageBody()
	if err != nil {
		return ast.Service{}, err
	}
	if _, err := p.expect(lexer.KindTripleDash, "---"); err != nil {
		return ast.Service{}, err
	}
	response, err := p.parseMessageBody()
	if err != nil {
		return ast.Service{}, err
	}
	return ast.Service{Request: request, Response: response}, nil
}

// ParseAction parses a complete .action file: goal, "---", result, "---",
// feedback.
func ParseAction(input string) (ast.Action, error) {
	p, err := newParser(input)
	if err != nil {
		return ast.Action{}, err
	}
	goal, err := p.parseMessageBody()
	if err != nil {
		return ast.Action{}, err
	}
	if _, err := p.expect(lexer.KindTripleDash, "---"); err != nil {
		return ast.Action{}, err
	}
	result, err := p.parseMessageBody()
	if err != nil {
		return ast.Action{}, err
	}
	if _, err := p.expect(lexer.KindTripleDash, "---"); err != nil {
		return ast.Action{}, err
	}
	feedback, err := p.parseMessageBody()
	if err != nil {
		return ast.Action{}, err
	}
	return ast.Action{Goal: goal, Result: result, Feedback: feedback}, nil
}
