package printer

import (
	"fmt"
	"strings"

	"github.com/stanford-oval/thingtalk-go/ast"
)

// Program renders p back to ThingTalk surface syntax.
func Program(p *ast.Program) string {
	f := newFormatter()
	for _, cls := range p.Classes {
		f.classDef(cls)
		f.newline()
	}
	for _, d := range p.Declarations {
		f.declaration(d)
		f.write(";")
		f.newline()
	}
	for i, s := range p.Statements {
		if i > 0 {
			f.newline()
		}
		f.statement(s)
		f.write(";")
	}
	return f.String()
}

// PermissionRule renders pr back to surface syntax.
func PermissionRule(pr *ast.PermissionRule) string {
	f := newFormatter()
	f.filter(pr.Principal)
	f.write(" : ")
	f.permFunc(pr.Query)
	f.write(" => ")
	f.permFunc(pr.Action)
	f.write(";")
	return f.String()
}

func (f *formatter) permFunc(pf ast.PermissionFunction) {
	switch {
	case pf.Star:
		f.write("*")
	case pf.Builtin:
		f.write("notify")
	default:
		f.write("@%s.%s(", pf.Selector.ClassKind, pf.Channel)
		f.inputParams(pf.InParams)
		f.write(")")
		if pf.Filter != nil {
			if _, ok := pf.Filter.(*ast.TrueExpr); !ok {
				f.write(" {")
				f.filter(pf.Filter)
				f.write("}")
			}
		}
	}
}

func (f *formatter) statement(s ast.Statement) {
	switch v := s.(type) {
	case *ast.CommandStatement:
		f.write("now => ")
		f.table(v.Table)
		f.actions(v.Actions)
	case *ast.RuleStatement:
		f.stream(v.Stream)
		f.actions(v.Actions)
	case *ast.AssignmentStatement:
		f.write("let %s := ", v.Name)
		f.table(v.Value)
	case *ast.DeclarationStatement:
		f.declaration(v)
	case *ast.OnInputChoiceStatement:
		f.write("oninputchoice")
		f.actions(v.Actions)
	default:
		f.write("/* unsupported statement %T */", s)
	}
}

func (f *formatter) actions(actions []ast.Action) {
	for _, a := range actions {
		f.write(" => ")
		switch act := a.(type) {
		case *ast.NotifyAction:
			f.write("%s", act.Name)
		case *ast.InvocationAction:
			f.invocation(act.Invocation)
		default:
			f.write("/* unsupported action %T */", a)
		}
	}
}

func (f *formatter) declaration(d *ast.DeclarationStatement) {
	f.write("let %s %s", d.DeclType, d.Name)
	if len(d.Args) > 0 {
		f.write("(")
		for i, a := range d.Args {
			if i > 0 {
				f.write(", ")
			}
			f.write("%s", a.Name)
		}
		f.write(")")
	}
	f.write(" := ")
	switch v := d.Value.(type) {
	case ast.Table:
		f.table(v)
	case ast.Stream:
		f.stream(v)
	case *ast.Program:
		f.write("%s", strings.TrimSuffix(Program(v), "\n"))
	default:
		f.write("/* unsupported declaration value %T */", d.Value)
	}
}

func (f *formatter) classDef(c *ast.ClassDef) {
	f.write("class @%s", c.Name)
	if len(c.Extends) > 0 {
		f.write(" extends ")
		for i, e := range c.Extends {
			if i > 0 {
				f.write(", ")
			}
			f.write("@%s", e)
		}
	}
	f.write(" {")
	f.newline()
	f.open()
	for name, fd := range c.Queries {
		f.functionDef("query", name, fd)
	}
	for name, fd := range c.Actions {
		f.functionDef("action", name, fd)
	}
	f.close()
	f.write("}")
}

func (f *formatter) functionDef(kindOf, name string, fd *ast.FunctionDef) {
	f.write("%s %s(", kindOf, name)
	for i, p := range fd.Params {
		if i > 0 {
			f.write(", ")
		}
		if !p.IsInput {
			f.write("out ")
		} else if p.Required {
			f.write("in req ")
		} else {
			f.write("in opt ")
		}
		f.write("%s: %s", p.Name, p.Type)
	}
	f.write(")")
	if fd.IsMonitorable {
		f.write(" monitorable")
	}
	if fd.IsList {
		f.write(" list")
	}
	f.write(";")
	f.newline()
	for name, val := range fd.Annotations {
		f.write("#[%s=%s]", name, fmt.Sprintf("%q", val))
		f.newline()
	}
}
