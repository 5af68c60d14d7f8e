package fuzztests

import (
	"testing"
	"time"

	"parsetrace/internal/demo"
	"parsetrace/internal/parser"
	"parsetrace/internal/source"
	"parsetrace/internal/testkit"
	"parsetrace/internal/trace"
)

// parseTimeout bounds one grammar run; longer means a loop that does not
// consume input.
const parseTimeout = 5 * time.Second

func clampInput(input []byte) string {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return string(input)
}

// FuzzGrammarInvariants checks the span invariants of every outcome and that
// the tracers agree on the result.
func FuzzGrammarInvariants(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		in := source.New(clampInput(input))
		for _, name := range demo.Names() {
			g, err := demo.Lookup(name)
			if err != nil {
				t.Fatal(err)
			}

			full := trace.NewCTracer(nil)
			res := g.Run(full, in, parser.Options{AllowIncomplete: true})
			if err := testkit.CheckSpanInvariants(in, res.Rest, res.Err); err != nil {
				t.Fatalf("%s on %q: %v", name, in.Fragment(), err)
			}
			if d := full.Depth(); d != 0 {
				t.Fatalf("%s on %q: %d frames left open", name, in.Fragment(), d)
			}

			replay := g.Run(trace.NewRTracer(), in, parser.Options{AllowIncomplete: true})
			none := g.Run(trace.NewNoTracer(), in, parser.Options{AllowIncomplete: true})
			for _, other := range []parser.Result[any]{replay, none} {
				if other.OK() != res.OK() || other.Rest.Offset() != res.Rest.Offset() {
					t.Fatalf("%s on %q: tracers disagree", name, in.Fragment())
				}
				if !res.OK() && other.Err.Code != res.Err.Code {
					t.Fatalf("%s on %q: error code %s vs %s", name, in.Fragment(), other.Err.Code, res.Err.Code)
				}
			}
		}
	})
}

// FuzzGrammarNoHang runs the calc grammar under a deadline.
func FuzzGrammarNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("((((((((((((((((((((1))))))))))))))))))))"))
	f.Add([]byte("- - - - - - - - 1"))
	f.Add([]byte("1 * * 2"))

	calc, err := demo.Lookup("calc")
	if err != nil {
		f.Fatal(err)
	}
	f.Fuzz(func(t *testing.T, input []byte) {
		in := source.New(clampInput(input))
		done := make(chan struct{})
		go func() {
			defer close(done)
			calc.Run(trace.NewRTracer(), in, parser.Options{})
		}()
		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("calc did not finish on %q", in.Fragment())
		}
	})
}
