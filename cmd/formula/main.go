package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zephyrtronium/formula"
)

func main() {
	log.SetFlags(0)
	var (
		cfg   config
		debug bool
	)
	addwith := func(s string) error {
		name, val, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		cfg.with = append(cfg.with, [2]string{strings.TrimSpace(name), strings.TrimSpace(val)})
		return nil
	}
	flag.StringVar(&cfg.inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&cfg.verb, "fmt", "%g", "result formatting string")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.BoolVar(&cfg.nl, "n", false, "parse separate input lines as separate formulas")
	flag.BoolVar(&cfg.echo, "echo", false, "print postfix form and parse trees")
	flag.BoolVar(&cfg.interactive, "i", false, "read formulas interactively")
	flag.BoolVar(&debug, "debug", false, "log cache activity")
	flag.IntVar(&cfg.capacity, "cache", formula.DefaultCacheCapacity, "compiled formula cache capacity")
	flag.Int64Var(&cfg.seed, "seed", 0, "random seed for rand and dice (default from the clock)")
	flag.Parse()

	logger, err := newLogger(debug)
	if err != nil {
		log.Fatal(err)
	}
	cfg.args = flag.Args()
	err = run(cfg, logger, os.Stdin, os.Stdout)
	// log.Fatal exits without running deferred calls.
	logger.Sync()
	if err != nil {
		log.Fatal(err)
	}
}

// config holds the parsed command line.
type config struct {
	inname, verb          string
	with                  [][2]string
	nl, echo, interactive bool
	capacity              int
	seed                  int64
	// args are formulas given on the command line.
	args []string
}

// run evaluates the configured formulas, writing results to stdout.
func run(cfg config, logger *zap.Logger, stdin io.Reader, stdout io.Writer) error {
	opts := []formula.Option{formula.CacheCapacity(cfg.capacity), formula.Logger(logger)}
	if cfg.seed != 0 {
		opts = append(opts, formula.Seed(cfg.seed))
	}
	in := formula.NewRuntime(opts...).NewInterpreter()
	if err := define(in, cfg.with); err != nil {
		return err
	}

	if cfg.interactive {
		return repl(in, stdin, stdout, cfg.verb)
	}

	var srcs []string
	f, err := infile(cfg.inname, stdin, len(cfg.args) == 0)
	if err != nil {
		return err
	}
	if f != nil {
		b, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		srcs = append(srcs, split(string(b), cfg.nl)...)
	}
	srcs = append(srcs, cfg.args...)

	verb := cfg.verb + "\n"
	for _, src := range srcs {
		if cfg.echo {
			e, err := formula.Compile(src)
			if err != nil {
				fmt.Fprintln(stdout, err)
				continue
			}
			fmt.Fprintf(stdout, "%s : %v : ", e.RPN(), e)
		}
		r, err := in.Evaluate(src)
		if err != nil {
			fmt.Fprintln(stdout, err)
			continue
		}
		fmt.Fprintf(stdout, verb, r)
	}
	return nil
}

// newLogger builds a development logger which only shows cache activity in
// debug mode.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("04:05.000")
	lvl := zapcore.InfoLevel
	if debug {
		lvl = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build(zap.AddStacktrace(zapcore.FatalLevel))
}

// define evaluates each name=value definition and sets the results as local
// variables. Every failing definition is reported.
func define(in *formula.Interpreter, with [][2]string) error {
	var err error
	for _, d := range with {
		v, e := in.Evaluate(d[1])
		if e != nil {
			err = multierr.Append(err, fmt.Errorf("setting %s: %w", d[0], e))
			continue
		}
		in.SetVariable(d[0], v)
	}
	return err
}

// split splits input into formulas: one per non-blank line if lines is set,
// otherwise the whole input.
func split(s string, lines bool) []string {
	if !lines {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return []string{s}
	}
	var r []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			r = append(r, line)
		}
	}
	return r
}

// repl reads formulas from r until EOF or a line "q". "setv key value" sets
// a variable. Each result is stored as $0, $1, and so on.
func repl(in *formula.Interpreter, r io.Reader, w io.Writer, verb string) error {
	fmt.Fprintln(w, "'setv key value' to set a variable, 'q' to quit")
	sc := bufio.NewScanner(r)
	idx := 0
	for {
		fmt.Fprint(w, "  : ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		fields := strings.Fields(line)
		switch {
		case line == "":
		case line == "q", line == "Q":
			return nil
		case fields[0] == "setv":
			if len(fields) != 3 {
				fmt.Fprintln(w, "syntax: setv key value")
				continue
			}
			v, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				fmt.Fprintln(w, "syntax: setv key value")
				continue
			}
			in.SetVariable(fields[1], v)
		default:
			v, err := in.Evaluate(line)
			if err != nil {
				fmt.Fprintln(w, err)
				continue
			}
			in.SetVariable(strconv.Itoa(idx), v)
			fmt.Fprintf(w, "$%d> "+verb+"\n", idx, v)
			idx++
		}
	}
}

func infile(inname string, stdin io.Reader, std bool) (io.Reader, error) {
	var f io.Reader
	switch {
	case inname != "" && inname != "-":
		in, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		f = in
	case inname == "-", std:
		f = stdin
	}
	if f == nil {
		return nil, nil
	}
	return bufio.NewReader(f), nil
}
