package probe

import (
	"context"
)

// Driver sequences a fixed catalogue through the verifiers.
type Driver struct {
	Checker *Checker
	Store   []*Primitive
	Load    []*Primitive
}

// RunAsmTests runs every store primitive through RunInstrCheck, then every load
// primitive through RunLdrInstrCheck, each with offset 0 and a banner line first.
// The context is only checked between primitives.
func (d *Driver) RunAsmTests(ctx context.Context, arena *Arena) (*RunReport, error) {
	rep := &RunReport{Arena: arena.Addr}
	for _, p := range d.Store {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		d.Checker.printf("%s\n", p.Banner())
		rep.add(d.Checker.RunInstrCheck(p, arena, 0))
	}
	for _, p := range d.Load {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		d.Checker.printf("%s\n", p.Banner())
		rep.add(d.Checker.RunLdrInstrCheck(p, arena, 0))
	}
	d.Checker.Log.Info("run complete", "arena", arena.Addr, "passed", rep.Passed, "failed", rep.Failed,
		"aborted", rep.Aborted, "observational", rep.Observational)
	return rep, nil
}
