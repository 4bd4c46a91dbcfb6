package printer

import (
	"fmt"
	"strconv"

	"github.com/stanford-oval/thingtalk-go/ast"
)

func (f *formatter) value(v ast.Value) {
	switch val := v.(type) {
	case *ast.BooleanValue:
		f.write("%s", strconv.FormatBool(val.Value))
	case *ast.StringValue:
		f.write("%q", val.Value)
	case *ast.NumberValue:
		f.write("%s", formatNumber(val.Value))
	case *ast.MeasureValue:
		f.write("%s%s", formatNumber(val.Value), val.Unit)
	case *ast.CurrencyValue:
		f.write("%s%s", formatNumber(val.Value), val.Unit)
	case *ast.DateValue:
		f.date(val)
	case *ast.TimeValue:
		f.write("new Time(%d, %d, %d)", val.Hour, val.Minute, val.Second)
	case *ast.LocationValue:
		f.location(val)
	case *ast.EntityValue:
		f.write("%q^^%s", val.Value, val.EntKind)
		if val.Display != "" {
			f.write("(%q)", val.Display)
		}
	case *ast.EnumValue:
		f.write("enum(%s)", val.Value)
	case *ast.ArrayValue:
		f.write("[")
		for i, el := range val.Value {
			if i > 0 {
				f.write(", ")
			}
			f.value(el)
		}
		f.write("]")
	case *ast.ObjectValue:
		f.write("{")
		first := true
		for name, fv := range val.Value {
			if !first {
				f.write(", ")
			}
			first = false
			f.write("%s: ", name)
			f.value(fv)
		}
		f.write("}")
	case *ast.VarRefValue:
		f.write("%s", val.Name)
	case *ast.EventValue:
		if val.Name == "" {
			f.write("$event")
		} else {
			f.write("$event.%s", val.Name)
		}
	case *ast.ContextRefValue:
		f.write("$context.%s", val.Name)
	case *ast.ComputationValue:
		f.computation(val)
	case *ast.ArrayFieldValue:
		f.value(val.Value)
		f.write("[%s]", val.Field)
	case *ast.FilterValue:
		f.value(val.Value)
		f.write(" filter {")
		f.filter(val.Filter)
		f.write("}")
	case *ast.UndefinedValue:
		f.write("undefined")
	default:
		f.write("/* unsupported value %T */", v)
	}
}

func (f *formatter) computation(v *ast.ComputationValue) {
	if len(v.Operands) != 2 {
		f.write("/* unsupported computation arity */")
		return
	}
	f.value(v.Operands[0])
	f.write(" %s ", v.Op)
	f.value(v.Operands[1])
}

func (f *formatter) date(v *ast.DateValue) {
	switch {
	case v.Value != nil:
		d := v.Value
		f.write("new Date(%d, %d, %d, %d, %d, %d)", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
	case v.Edge != nil:
		f.write("%s(%s)", v.Edge.Edge, v.Edge.Unit)
	case v.Piece != nil:
		f.write("new Date(%s, %s, %s)", optInt(v.Piece.Year), optInt(v.Piece.Month), optInt(v.Piece.Day))
	default:
		f.write("makeDate()")
	}
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func (f *formatter) location(v *ast.LocationValue) {
	if v.Relative != "" {
		f.write("$location.%s", v.Relative)
		return
	}
	f.write("new Location(%s, %s", formatNumber(v.Latitude), formatNumber(v.Longitude))
	if v.Display != "" {
		f.write(", %q", v.Display)
	}
	f.write(")")
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
