package registry

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/specialistvlad/wdlgo/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	functionType = cty.Capsule("function", reflect.TypeOf(value.Function{}))
	channelType  = cty.Capsule("channel", reflect.TypeOf(value.Channel(0)))

	valueIface   = reflect.TypeOf((*value.Value)(nil)).Elem()
	ctyValueType = reflect.TypeOf(cty.Value{})
)

// ToCty converts a runtime value into a cty.Value. Arrays become tuples and
// objects become object values so heterogeneous contents survive; functions
// and channels are carried as capsules.
func ToCty(v value.Value) (cty.Value, error) {
	switch x := v.(type) {
	case nil, value.Null:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case value.Bool:
		return cty.BoolVal(bool(x)), nil
	case value.Number:
		if math.IsNaN(float64(x)) {
			return cty.NilVal, fmt.Errorf("NaN cannot be converted")
		}
		return cty.NumberFloatVal(float64(x)), nil
	case value.String:
		return cty.StringVal(string(x)), nil
	case value.Array:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(x))
		for i, e := range x {
			cv, err := ToCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in element %d: %w", i, err)
			}
			elems[i] = cv
		}
		return cty.TupleVal(elems), nil
	case value.Object:
		if len(x) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(x))
		for k, e := range x {
			cv, err := ToCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in field `%s`: %w", k, err)
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	case *value.Function:
		f := *x
		return cty.CapsuleVal(functionType, &f), nil
	case value.Channel:
		ch := x
		return cty.CapsuleVal(channelType, &ch), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value %T", v)
	}
}

// FromCty converts a cty.Value into a runtime value. Unknown values become
// null.
func FromCty(v cty.Value) (value.Value, error) {
	if !v.IsKnown() || v.IsNull() {
		return value.Null{}, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.Bool:
		return value.Bool(v.True()), nil
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return value.Number(f), nil
	case ty == cty.String:
		return value.String(v.AsString()), nil
	case ty.IsListType(), ty.IsSetType(), ty.IsTupleType():
		arr := make(value.Array, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			e, err := FromCty(ev)
			if err != nil {
				return nil, err
			}
			arr = append(arr, e)
		}
		return arr, nil
	case ty.IsMapType(), ty.IsObjectType():
		obj := make(value.Object, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			e, err := FromCty(ev)
			if err != nil {
				return nil, err
			}
			obj[k.AsString()] = e
		}
		return obj, nil
	case ty.Equals(functionType):
		f := *v.EncapsulatedValue().(*value.Function)
		return &f, nil
	case ty.Equals(channelType):
		return *v.EncapsulatedValue().(*value.Channel), nil
	default:
		return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
	}
}

// DecodeValue decodes v into the Go value target points to. Struct fields
// are matched by their `cty` tags; absent fields keep their zero value and
// fields the struct does not declare are rejected.
func DecodeValue(v value.Value, target any) error {
	cv, err := ToCty(v)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	return decode(cv, rv.Elem())
}

// decode is a recursive function that populates a Go value from a cty.Value.
func decode(val cty.Value, dst reflect.Value) error {
	switch dst.Type() {
	case valueIface:
		v, err := FromCty(val)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(v))
		return nil
	case ctyValueType:
		dst.Set(reflect.ValueOf(val))
		return nil
	}

	if !val.IsKnown() || val.IsNull() {
		return nil
	}

	ty := val.Type()
	switch dst.Kind() {
	case reflect.Pointer:
		elem := reflect.New(dst.Type().Elem())
		if err := decode(val, elem.Elem()); err != nil {
			return err
		}
		dst.Set(elem)
		return nil

	case reflect.Struct:
		if !ty.IsObjectType() && !ty.IsMapType() {
			return typeMismatch("object", ty)
		}
		fields := structFields(dst.Type())
		attrs := val.AsValueMap()
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			idx, ok := fields[name]
			if !ok {
				return fmt.Errorf("unknown field `%s`", name)
			}
			if err := decode(attrs[name], dst.Field(idx)); err != nil {
				return fmt.Errorf("in field `%s`: %w", name, err)
			}
		}
		return nil

	case reflect.Slice:
		if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
			return typeMismatch("array", ty)
		}
		out := reflect.MakeSlice(dst.Type(), val.LengthInt(), val.LengthInt())
		it := val.ElementIterator()
		for i := 0; it.Next(); i++ {
			_, ev := it.Element()
			if err := decode(ev, out.Index(i)); err != nil {
				return fmt.Errorf("in element %d: %w", i, err)
			}
		}
		dst.Set(out)
		return nil

	case reflect.Map:
		if dst.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("map key type %s is not a string", dst.Type().Key())
		}
		if !ty.IsObjectType() && !ty.IsMapType() {
			return typeMismatch("object", ty)
		}
		out := reflect.MakeMapWithSize(dst.Type(), val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			elem := reflect.New(dst.Type().Elem()).Elem()
			if err := decode(ev, elem); err != nil {
				return fmt.Errorf("in field `%s`: %w", k.AsString(), err)
			}
			out.SetMapIndex(reflect.ValueOf(k.AsString()).Convert(dst.Type().Key()), elem)
		}
		dst.Set(out)
		return nil

	case reflect.Interface:
		v, err := FromCty(val)
		if err != nil {
			return err
		}
		if native := value.ToJSON(v); native != nil {
			dst.Set(reflect.ValueOf(native))
		}
		return nil

	default:
		want, err := gocty.ImpliedType(reflect.Zero(dst.Type()).Interface())
		if err != nil {
			return fmt.Errorf("cannot decode into %s: %w", dst.Type(), err)
		}
		if !ty.Equals(want) {
			return typeMismatch(typeName(want), ty)
		}
		return gocty.FromCtyValue(val, dst.Addr().Interface())
	}
}

func structFields(t reflect.Type) map[string]int {
	fields := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("cty"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		fields[tag] = i
	}
	return fields
}

func typeMismatch(expected string, given cty.Type) error {
	return fmt.Errorf("expected `%s`, given `%s`", expected, typeName(given))
}

// typeName names a cty type the way runtime values name theirs.
func typeName(ty cty.Type) string {
	switch {
	case ty == cty.Bool:
		return string(value.BoolType)
	case ty == cty.Number:
		return string(value.NumberType)
	case ty == cty.String:
		return string(value.StringType)
	case ty.IsListType(), ty.IsSetType(), ty.IsTupleType():
		return string(value.ArrayType)
	case ty.IsMapType(), ty.IsObjectType():
		return string(value.ObjectType)
	case ty == cty.DynamicPseudoType:
		return string(value.NullType)
	default:
		return ty.FriendlyName()
	}
}

// FromNative converts a native function's result into a runtime value.
// Structs go through go-cty using their `cty` tags.
func FromNative(out any) (value.Value, error) {
	if out == nil {
		return value.Null{}, nil
	}
	if v, ok := out.(value.Value); ok {
		return v, nil
	}

	rv := reflect.ValueOf(out)
	switch rv.Kind() {
	case reflect.Bool:
		return value.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return value.Number(rv.Float()), nil
	case reflect.String:
		return value.String(rv.String()), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return value.Null{}, nil
		}
		return FromNative(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return value.Array{}, nil
		}
		arr := make(value.Array, rv.Len())
		for i := range arr {
			e, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			arr[i] = e
		}
		return arr, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key type %s is not a string", rv.Type().Key())
		}
		obj := make(value.Object, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			e, err := FromNative(it.Value().Interface())
			if err != nil {
				return nil, err
			}
			obj[it.Key().String()] = e
		}
		return obj, nil
	case reflect.Struct:
		ty, err := gocty.ImpliedType(out)
		if err != nil {
			return nil, fmt.Errorf("unable to infer cty.Type: %w", err)
		}
		cv, err := gocty.ToCtyValue(out, ty)
		if err != nil {
			return nil, err
		}
		return FromCty(cv)
	default:
		return nil, fmt.Errorf("unsupported result type %T", out)
	}
}

func checkTarget(t reflect.Type) error {
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("struct parameter needs a struct target, got %v", t)
	}
	if _, err := targetType(t); err != nil {
		return fmt.Errorf("target %s has no cty type: %w", t, err)
	}
	return nil
}

// targetType describes t the way decode reads it. Fields holding a runtime
// value or a raw cty.Value accept anything; other leaves defer to gocty.
func targetType(t reflect.Type) (cty.Type, error) {
	switch t {
	case valueIface, ctyValueType:
		return cty.DynamicPseudoType, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return targetType(t.Elem())

	case reflect.Struct:
		fields := structFields(t)
		attrs := make(map[string]cty.Type, len(fields))
		for name, idx := range fields {
			ft, err := targetType(t.Field(idx).Type)
			if err != nil {
				return cty.NilType, fmt.Errorf("in field `%s`: %w", name, err)
			}
			attrs[name] = ft
		}
		return cty.Object(attrs), nil

	case reflect.Slice:
		et, err := targetType(t.Elem())
		if err != nil {
			return cty.NilType, err
		}
		return cty.List(et), nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return cty.NilType, fmt.Errorf("map key type %s is not a string", t.Key())
		}
		et, err := targetType(t.Elem())
		if err != nil {
			return cty.NilType, err
		}
		return cty.Map(et), nil

	case reflect.Interface:
		return cty.DynamicPseudoType, nil

	default:
		return gocty.ImpliedType(reflect.Zero(t).Interface())
	}
}
