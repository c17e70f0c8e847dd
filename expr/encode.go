package expr

import (
	"bytes"
	"fmt"
	"io"

	"github.com/easyjit/easyjit"
)

// Canonical binary encoding of the tree: a postfix stream of tagged nodes.
// Children always precede the parent, so decoding is a single pass over the
// bytes with a small value stack. The encoding is deterministic, which makes
// it usable as a cache identity for the compiled artifact.
const (
	tagNumber = byte(iota)
	tagIdent
	tagBinary
	tagUnary
)

// Bytes encodes the tree into its canonical binary form
func Bytes(e Expr) []byte {
	var buf bytes.Buffer
	if err := writeExpr(&buf, e); err != nil {
		panic(err) // bytes.Buffer does not fail
	}
	return buf.Bytes()
}

// Write encodes the tree into w
func Write(w io.Writer, e Expr) error {
	return writeExpr(w, e)
}

func writeExpr(w io.Writer, e Expr) error {
	switch n := e.(type) {
	case *Number:
		if _, err := w.Write([]byte{tagNumber}); err != nil {
			return err
		}
		return easyjit.WriteFloat64(w, n.Value)
	case *Ident:
		if _, err := w.Write([]byte{tagIdent}); err != nil {
			return err
		}
		return easyjit.WriteString8(w, n.Name)
	case *Binary:
		if err := writeExpr(w, n.Left); err != nil {
			return err
		}
		if err := writeExpr(w, n.Right); err != nil {
			return err
		}
		_, err := w.Write([]byte{tagBinary, byte(n.Op)})
		return err
	case *Unary:
		if err := writeExpr(w, n.Arg); err != nil {
			return err
		}
		_, err := w.Write([]byte{tagUnary, byte(n.Op)})
		return err
	}
	panic(fmt.Sprintf("writeExpr: unknown node type %T", e))
}

// ExprFromBytes decodes the canonical form back into a tree. Malformed data
// is an error, never a panic: encoded trees may come from untrusted storage
func ExprFromBytes(data []byte) (Expr, error) {
	r := bytes.NewReader(data)
	stack := make([]Expr, 0, 8)
	for r.Len() > 0 {
		tag, _ := r.ReadByte()
		switch tag {
		case tagNumber:
			v, err := easyjit.ReadFloat64(r)
			if err != nil {
				return nil, fmt.Errorf("ExprFromBytes: %v", err)
			}
			stack = append(stack, Num(v))
		case tagIdent:
			name, err := easyjit.ReadString8(r)
			if err != nil {
				return nil, fmt.Errorf("ExprFromBytes: %v", err)
			}
			if len(name) == 0 {
				return nil, fmt.Errorf("ExprFromBytes: empty identifier")
			}
			stack = append(stack, &Ident{Name: name})
		case tagBinary:
			opByte, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("ExprFromBytes: %v", err)
			}
			op := BinaryOp(opByte)
			if !op.Valid() {
				return nil, fmt.Errorf("ExprFromBytes: wrong binary operator %d", opByte)
			}
			if len(stack) < 2 {
				return nil, fmt.Errorf("ExprFromBytes: missing operands for '%s'", op)
			}
			left, right := stack[len(stack)-2], stack[len(stack)-1]
			stack = stack[:len(stack)-2]
			stack = append(stack, &Binary{Op: op, Left: left, Right: right})
		case tagUnary:
			opByte, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("ExprFromBytes: %v", err)
			}
			op := UnaryOp(opByte)
			if !op.Valid() {
				return nil, fmt.Errorf("ExprFromBytes: wrong unary operator %d", opByte)
			}
			if len(stack) < 1 {
				return nil, fmt.Errorf("ExprFromBytes: missing operand for '%s'", op)
			}
			arg := stack[len(stack)-1]
			stack[len(stack)-1] = &Unary{Op: op, Arg: arg}
		default:
			return nil, fmt.Errorf("ExprFromBytes: wrong node tag %d", tag)
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("ExprFromBytes: not a single tree (%d roots)", len(stack))
	}
	return stack[0], nil
}
