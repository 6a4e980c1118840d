// dttcheck re-checks the built-in definitions of the core
// and exits non-zero if any of them is ill-typed.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eaburns/dtt/check"
	"github.com/eaburns/dtt/compare"
	"github.com/eaburns/dtt/core"
)

var (
	v           = flag.Bool("v", false, "print each definition as it is checked")
	deferLevels = flag.Bool("defer-levels", false, "accept undecided level comparisons and print them")
)

type definition struct {
	name  string
	check func(*check.Checker) error
}

func data(def *core.DataDef) definition {
	return definition{name: def.Name(), check: func(c *check.Checker) error { return c.CheckData(def) }}
}

func function(def *core.FunctionDef) definition {
	return definition{name: def.Name(), check: func(c *check.Checker) error { return c.CheckFunction(def) }}
}

var prelude = []definition{
	data(core.Nat),
	data(core.Empty),
	function(core.PathInfix),
}

func main() {
	flag.Parse()
	if len(flag.Args()) > 0 {
		usage("unexpected arguments")
	}
	var opts []compare.Option
	if *deferLevels {
		opts = append(opts, compare.DeferLevels())
	}
	eqs := compare.New(opts...)
	c := check.New(check.NewContext(), eqs)

	var failed bool
	for _, def := range prelude {
		if *v {
			fmt.Println(def.name)
		}
		if err := def.check(c); err != nil {
			fmt.Printf("%s: %s\n", def.name, err)
			failed = true
		}
	}
	for _, eq := range eqs.Levels {
		fmt.Printf("deferred: %s %s %s\n", eq.A, eq.CMP, eq.B)
	}
	for _, eq := range eqs.Deferred {
		fmt.Printf("deferred: %s\n", eq)
	}
	if failed {
		os.Exit(1)
	}
}

func usage(msg string) {
	fmt.Printf("%s\n", msg)
	fmt.Printf("dttcheck [flags]\n")
	flag.PrintDefaults()
	os.Exit(1)
}
