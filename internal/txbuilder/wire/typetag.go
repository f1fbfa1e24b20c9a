package wire

import (
	"fmt"
	"strings"

	"github.com/thep2p/go-myso-localnet/internal/model"
)

// TypeTag is a Move type.
type TypeTag struct {
	Bool    *struct{}
	U8      *struct{}
	U64     *struct{}
	U128    *struct{}
	Address *struct{}
	Signer  *struct{}
	Vector  *TypeTag
	Struct  *StructTag
	U16     *struct{}
	U32     *struct{}
	U256    *struct{}
}

func (TypeTag) IsBcsEnum() {}

// StructTag is a fully qualified struct type with its type parameters.
type StructTag struct {
	Address    model.Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

// StructTypeTag returns the struct type address::module::name<params...>.
func StructTypeTag(addr model.Address, module, name string, params ...TypeTag) TypeTag {
	return TypeTag{Struct: &StructTag{Address: addr, Module: module, Name: name, TypeParams: params}}
}

var primitives = map[string]func() TypeTag{
	"bool":    func() TypeTag { return TypeTag{Bool: &struct{}{}} },
	"u8":      func() TypeTag { return TypeTag{U8: &struct{}{}} },
	"u16":     func() TypeTag { return TypeTag{U16: &struct{}{}} },
	"u32":     func() TypeTag { return TypeTag{U32: &struct{}{}} },
	"u64":     func() TypeTag { return TypeTag{U64: &struct{}{}} },
	"u128":    func() TypeTag { return TypeTag{U128: &struct{}{}} },
	"u256":    func() TypeTag { return TypeTag{U256: &struct{}{}} },
	"address": func() TypeTag { return TypeTag{Address: &struct{}{}} },
	"signer":  func() TypeTag { return TypeTag{Signer: &struct{}{}} },
}

// ParseTypeTag parses the canonical text form of a type, e.g. "0x2::coin::Coin<0x2::myso::MYSO>".
func ParseTypeTag(s string) (TypeTag, error) {
	p := &typeParser{src: strings.ReplaceAll(s, " ", "")}
	tag, err := p.parse()
	if err != nil {
		return TypeTag{}, fmt.Errorf("parse type %q: %w", s, err)
	}
	if p.pos != len(p.src) {
		return TypeTag{}, fmt.Errorf("parse type %q: trailing input at %d", s, p.pos)
	}
	return tag, nil
}

// MustParseTypeTag is ParseTypeTag for constants.
func MustParseTypeTag(s string) TypeTag {
	t, err := ParseTypeTag(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String renders the canonical text form with full-length addresses.
func (t TypeTag) String() string {
	switch {
	case t.Vector != nil:
		return "vector<" + t.Vector.String() + ">"
	case t.Struct != nil:
		var b strings.Builder
		fmt.Fprintf(&b, "%s::%s::%s", t.Struct.Address, t.Struct.Module, t.Struct.Name)
		if len(t.Struct.TypeParams) > 0 {
			params := make([]string, len(t.Struct.TypeParams))
			for i, p := range t.Struct.TypeParams {
				params[i] = p.String()
			}
			b.WriteString("<" + strings.Join(params, ",") + ">")
		}
		return b.String()
	case t.Bool != nil:
		return "bool"
	case t.U8 != nil:
		return "u8"
	case t.U16 != nil:
		return "u16"
	case t.U32 != nil:
		return "u32"
	case t.U64 != nil:
		return "u64"
	case t.U128 != nil:
		return "u128"
	case t.U256 != nil:
		return "u256"
	case t.Address != nil:
		return "address"
	case t.Signer != nil:
		return "signer"
	default:
		return "<invalid>"
	}
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) parse() (TypeTag, error) {
	ident := p.ident()
	if ident == "" {
		return TypeTag{}, fmt.Errorf("expected type at %d", p.pos)
	}

	if ident == "vector" {
		if err := p.expect("<"); err != nil {
			return TypeTag{}, err
		}
		elem, err := p.parse()
		if err != nil {
			return TypeTag{}, err
		}
		if err := p.expect(">"); err != nil {
			return TypeTag{}, err
		}
		return TypeTag{Vector: &elem}, nil
	}

	if mk, ok := primitives[ident]; ok {
		return mk(), nil
	}

	addr, err := model.AddressFromHex(ident)
	if err != nil {
		return TypeTag{}, err
	}
	if err := p.expect("::"); err != nil {
		return TypeTag{}, err
	}
	module := p.ident()
	if err := p.expect("::"); err != nil {
		return TypeTag{}, err
	}
	name := p.ident()
	if module == "" || name == "" {
		return TypeTag{}, fmt.Errorf("incomplete struct type at %d", p.pos)
	}

	var params []TypeTag
	if p.peek("<") {
		p.pos++
		for {
			param, err := p.parse()
			if err != nil {
				return TypeTag{}, err
			}
			params = append(params, param)
			if p.peek(",") {
				p.pos++
				continue
			}
			if err := p.expect(">"); err != nil {
				return TypeTag{}, err
			}
			break
		}
	}
	return StructTypeTag(addr, module, name, params...), nil
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *typeParser) peek(tok string) bool {
	return strings.HasPrefix(p.src[p.pos:], tok)
}

func (p *typeParser) expect(tok string) error {
	if !p.peek(tok) {
		return fmt.Errorf("expected %q at %d", tok, p.pos)
	}
	p.pos += len(tok)
	return nil
}
