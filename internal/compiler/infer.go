package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/jcodec/internal/schema"
)

// Infer derives a schema from a CUE type. Integer bounds, string patterns,
// list element types, optional fields, pattern constraints and disjunctions
// carry over; a concrete scalar becomes a constant schema.
func Infer(v cue.Value) (schema.Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	s, err := infer(v, "type")
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(s); err != nil {
		return nil, schemaError(err, v.Pos())
	}
	return s, nil
}

func infer(v cue.Value, path string) (schema.Schema, error) {
	if op, args := v.Expr(); op == cue.OrOp {
		branches := make([]schema.Schema, 0, len(args))
		for i, a := range args {
			b, err := infer(a, fmt.Sprintf("%s|%d", path, i))
			if err != nil {
				return nil, err
			}
			branches = append(branches, b)
		}
		s, err := schema.NewOr(branches...)
		if err != nil {
			return nil, schemaError(err, v.Pos())
		}
		return schema.Compact(s).Schema(), nil
	}

	switch k := v.IncompleteKind(); k {
	case cue.NullKind:
		return schema.NullSchema, nil
	case cue.BoolKind:
		if b, err := v.Bool(); err == nil {
			return schema.BooleanConst(b), nil
		}
		return schema.BooleanSchema, nil
	case cue.IntKind:
		return inferInt(v, path)
	case cue.FloatKind, cue.NumberKind:
		if v.IsConcrete() {
			if f, err := v.Float64(); err == nil {
				return schema.DoubleConst(f), nil
			}
		}
		return schema.DoubleSchema, nil
	case cue.StringKind:
		return inferString(v, path)
	case cue.BytesKind:
		if b, err := v.Bytes(); err == nil {
			n := int64(len(b))
			return &schema.Binary{MinLength: &n, MaxLength: &n}, nil
		}
		return schema.BinarySchema, nil
	case cue.ListKind:
		return inferList(v, path)
	case cue.StructKind:
		return inferStruct(v, path)
	case cue.TopKind:
		return schema.AnySchema, nil
	default:
		return nil, &CompileError{
			Field:   path,
			Message: fmt.Sprintf("unsupported type kind: %v", k),
			Pos:     v.Pos(),
		}
	}
}

// bounds collects the comparison constraints of a conjunction such as
// int & >=0 & <10.
func bounds(v cue.Value, visit func(op cue.Op, arg cue.Value)) {
	op, args := v.Expr()
	switch op {
	case cue.AndOp:
		for _, a := range args {
			bounds(a, visit)
		}
	case cue.GreaterThanOp, cue.GreaterThanEqualOp, cue.LessThanOp, cue.LessThanEqualOp,
		cue.RegexMatchOp:
		if len(args) == 1 {
			visit(op, args[0])
		}
	}
}

func inferInt(v cue.Value, path string) (schema.Schema, error) {
	if v.IsConcrete() {
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return schema.LongConst(n), nil
	}

	var min, max *int64
	var err error
	bounds(v, func(op cue.Op, arg cue.Value) {
		n, e := arg.Int64()
		if e != nil {
			err = e
			return
		}
		switch op {
		case cue.GreaterThanOp:
			n++
			fallthrough
		case cue.GreaterThanEqualOp:
			if min == nil || n > *min {
				min = schema.Ptr(n)
			}
		case cue.LessThanOp:
			n--
			fallthrough
		case cue.LessThanEqualOp:
			if max == nil || n < *max {
				max = schema.Ptr(n)
			}
		}
	})
	if err != nil {
		return nil, formatCUEError(err)
	}
	s, err := schema.NewLong(min, max)
	if err != nil {
		return nil, schemaError(err, v.Pos())
	}
	return s, nil
}

func inferString(v cue.Value, path string) (schema.Schema, error) {
	if v.IsConcrete() {
		str, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return schema.StringConst(str), nil
	}

	var pattern string
	bounds(v, func(op cue.Op, arg cue.Value) {
		if op != cue.RegexMatchOp || pattern != "" {
			return
		}
		if p, err := arg.String(); err == nil {
			pattern = p
		}
	})
	s, err := schema.NewString(unanchor(pattern), nil, nil)
	if err != nil {
		return nil, schemaError(err, v.Pos())
	}
	return s, nil
}

// unanchor drops the anchors CUE patterns usually carry; string schemas
// always match the whole string.
func unanchor(p string) string {
	if len(p) >= 2 && p[0] == '^' && p[len(p)-1] == '$' {
		return p[1 : len(p)-1]
	}
	return p
}

func inferList(v cue.Value, path string) (schema.Schema, error) {
	var head []schema.Schema
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		h, err := infer(iter.Value(), fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		head = append(head, h)
	}

	var rest schema.Schema
	if elem := v.LookupPath(cue.MakePath(cue.AnyIndex)); elem.Exists() {
		rest, err = infer(elem, path+"[_]")
		if err != nil {
			return nil, err
		}
	}
	s, err := schema.NewArray(head, rest, 0, nil)
	if err != nil {
		return nil, schemaError(err, v.Pos())
	}
	return s, nil
}

func inferStruct(v cue.Value, path string) (schema.Schema, error) {
	iter, err := v.Fields(cue.Optional(true))
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []schema.Field
	for iter.Next() {
		name := iter.Selector().Unquoted()
		fs, err := infer(iter.Value(), path+"."+name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, schema.Field{
			Name:     name,
			Schema:   fs,
			Optional: iter.IsOptional(),
		})
	}

	var rest schema.Schema
	if elem := v.LookupPath(cue.MakePath(cue.AnyString)); elem.Exists() {
		rest, err = infer(elem, path+".[string]")
		if err != nil {
			return nil, err
		}
	} else if v.Allows(cue.AnyString) {
		rest = schema.AnySchema
	}

	s, err := schema.NewRecord(fields, rest)
	if err != nil {
		return nil, schemaError(err, v.Pos())
	}
	return s, nil
}
