package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/wippyai/qtbridge/bridge"
	"github.com/wippyai/qtbridge/config"
	"github.com/wippyai/qtbridge/native"
)

// assignments collects repeated -set name=value flags.
type assignments []assignment

type assignment struct {
	name  string
	value string
}

func (a *assignments) String() string {
	parts := make([]string, len(*a))
	for i, s := range *a {
		parts[i] = s.name + "=" + s.value
	}
	return strings.Join(parts, ",")
}

func (a *assignments) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", v)
	}
	*a = append(*a, assignment{name: name, value: value})
	return nil
}

func main() {
	var sets assignments
	var (
		configFile  = flag.String("config", "", "Path to config file (default "+config.DefaultFile+" if present)")
		typeName    = flag.String("type", "myobject", "Bound type to inspect ("+strings.Join(targetNames(), "|")+")")
		list        = flag.Bool("list", false, "Print the declaration and native layout and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		tick        = flag.Duration("tick", time.Second, "Update request interval in interactive mode")
	)
	flag.Var(&sets, "set", "Assign a property, name=value (repeatable)")
	flag.Parse()

	if _, ok := targets[*typeName]; !ok {
		fmt.Fprintln(os.Stderr, "Usage: qtinspect [-config file] -type <type> [-set name=value]...")
		fmt.Fprintln(os.Stderr, "       qtinspect -type <type> -list")
		fmt.Fprintln(os.Stderr, "       qtinspect -type <type> -i  (interactive mode)")
		fmt.Fprintf(os.Stderr, "Types: %s\n", strings.Join(targetNames(), ", "))
		os.Exit(1)
	}

	res, err := config.Resolve(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so it keeps the default no-op loggers.
	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(res, *typeName, *tick); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger, err := res.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	native.SetLogger(logger)
	bridge.SetLogger(logger)

	err = run(res, *typeName, sets, *list)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(res *config.Resolved, typeName string, sets assignments, listOnly bool) error {
	ctx := context.Background()

	s, err := openSession(ctx, res, typeName)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	fmt.Print(s.decl.Describe())

	if listOnly {
		return nil
	}

	// Construction events are not interesting here.
	s.events.reset()

	for _, a := range sets {
		if err := s.set(a.name, a.value); err != nil {
			return fmt.Errorf("set %s: %w", a.name, err)
		}
	}
	s.rt.ProcessEvents()

	if len(sets) > 0 {
		fmt.Printf("\nEvents:\n")
		for _, e := range s.events.snapshot() {
			fmt.Printf("  %s\n", e)
		}
	}

	fmt.Printf("\nSnapshot:\n")
	values := s.values()
	for i, p := range s.decl.Properties {
		fmt.Printf("  %s = %s\n", p.Name, values[i])
	}
	return nil
}
