package printer

import (
	"strings"

	"github.com/stanford-oval/thingtalk-go/ast"
)

func (f *formatter) stream(s ast.Stream) {
	switch v := s.(type) {
	case *ast.TimerStream:
		f.write("timer(")
		f.timerParams(v)
		f.write(")")
	case *ast.AtTimerStream:
		f.write("attimer(time=[")
		for i, t := range v.Times {
			if i > 0 {
				f.write(", ")
			}
			f.value(t)
		}
		f.write("]")
		if v.Expiration != nil {
			f.write(", expiration_date=")
			f.value(v.Expiration)
		}
		f.write(")")
	case *ast.MonitorStream:
		f.write("monitor(")
		f.table(v.Table)
		f.write(")")
		if len(v.OnNew) > 0 {
			f.write(" on new(%s)", strings.Join(v.OnNew, ", "))
		}
	case *ast.EdgeFilterStream:
		f.write("edge ")
		f.stream(v.Stream)
		f.write(" on ")
		f.filter(v.Filter)
	case *ast.EdgeNewStream:
		f.write("edge ")
		f.stream(v.Stream)
		f.write(" on new")
	case *ast.ProjectionStream:
		f.write("[%s] of ", strings.Join(v.Names, ", "))
		f.stream(v.Stream)
	case *ast.ComputeStream:
		f.write("compute(")
		f.value(v.Expr)
		f.write(")")
		if v.Alias != "" {
			f.write(" as %s", v.Alias)
		}
		f.write(" of ")
		f.stream(v.Stream)
	case *ast.JoinStream:
		f.stream(v.Stream)
		f.write(" join ")
		f.table(v.Table)
		if len(v.InParams) > 0 {
			f.write(" on (")
			f.inputParams(v.InParams)
			f.write(")")
		}
	case *ast.FilteredStream:
		f.stream(v.Stream)
		f.write(", ")
		f.filter(v.Filter)
	case *ast.AliasStream:
		f.stream(v.Stream)
		f.write(" as %s", v.Alias)
	default:
		f.write("/* unsupported stream %T */", s)
	}
}

func (f *formatter) timerParams(v *ast.TimerStream) {
	first := true
	emit := func(name string, val ast.Value) {
		if val == nil {
			return
		}
		if !first {
			f.write(", ")
		}
		first = false
		f.write("%s=", name)
		f.value(val)
	}
	emit("base", v.Base)
	emit("interval", v.Interval)
	emit("frequency", v.Frequency)
}
