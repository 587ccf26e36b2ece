package probe

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// Checker runs single verification trials. Out receives the human-readable report,
// Heap provides the scratch buffers of each trial.
type Checker struct {
	Out  io.Writer
	Log  log.Logger
	Heap Allocator
}

func NewChecker(out io.Writer, l log.Logger, heap Allocator) *Checker {
	return &Checker{Out: out, Log: l, Heap: heap}
}

func (c *Checker) printf(format string, args ...any) {
	if c.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(c.Out, format, args...)
}

func (c *Checker) free(what string, addr uint64) {
	if err := c.Heap.Free(addr); err != nil {
		c.Log.Error("failed to free scratch buffer", "buffer", what, "addr", addr, "err", err)
	}
}

func (c *Checker) aborted(res *Result, err error) *Result {
	c.printf("Trial aborted: %v\n", err)
	c.Log.Error("trial aborted", "primitive", res.Name, "mode", res.Mode, "err", err)
	return res.abort(err)
}

// RunInstrCheck verifies that store primitive p writes exactly p.Size bytes at
// arena+Misalign+offset and nothing else in the arena.
func (c *Checker) RunInstrCheck(p *Primitive, arena *Arena, offset int64) *Result {
	res := newResult(p, offset)
	size := p.Size
	if err := arena.check(); err != nil {
		return c.aborted(res, err)
	}
	start, err := arena.window(offset, size)
	if err != nil {
		return c.aborted(res, err)
	}
	end := start + size

	// test data that makes it easy to spot errors, the second half shows source over-reads in dumps
	srcData := append(pattern(size), make([]byte, size)...)
	for i := size; i < 2*size; i++ {
		srcData[i] = SourceSentinel
	}
	src, err := c.Heap.Alloc(2 * size)
	if err != nil {
		return c.aborted(res, fmt.Errorf("failed to allocate source buffer: %w", err))
	}
	defer c.free("source", src)
	if err := write(arena.Mem, src, srcData); err != nil {
		return c.aborted(res, fmt.Errorf("failed to fill source buffer: %w", err))
	}

	// to check that only what should be touched gets touched
	if err := arena.Fill(ArenaSentinel); err != nil {
		return c.aborted(res, fmt.Errorf("failed to poison arena: %w", err))
	}

	c.Log.Debug("running store trial", "primitive", p.Name, "tag", p.Tag, "size", size, "offset", offset, "arena", arena.Addr)
	if err := p.Transfer(arena.Addr+Misalign, src, offset); err != nil {
		c.printf("Transfer fault: %v\n", err)
		res.fail(&Failure{Kind: ErrTransferFault, Pos: int(start), Cause: err})
	}

	got, err := arena.Bytes()
	if err != nil {
		return c.aborted(res, err)
	}
	res.Fingerprint = crypto.Keccak256Hash(got)

	window := got[start:end]
	if SafeMemcmp(window, srcData, int(size)) != 0 {
		c.printf("Data mismatch!\n")
		c.printf("Source: \t%s\n", Dump(srcData[:size]))
		c.printf("Dest: \t%s\n", Dump(window))
		res.fail(&Failure{
			Kind: ErrContentMismatch,
			Pos:  int(start) + firstDiff(window, srcData[:size]),
			Got:  hexutil.Bytes(cloneBytes(window)),
			Want: hexutil.Bytes(cloneBytes(srcData[:size])),
		})
	}

	// the data may have been copied correctly, but there could still be overruns
	if pos, bad := Memcheck(got[:start], ArenaSentinel); bad {
		c.printf("Overrun in front of the actual address at +%d! Data is: \n", pos)
		c.printf("%s\n(should all be 0x%02x)\n", Dump(got[:start]), ArenaSentinel)
		res.fail(&Failure{Kind: ErrUnderrun, Pos: pos, Got: hexutil.Bytes(cloneBytes(got[:start]))})
	}

	if pos, bad := Memcheck(got[end:], ArenaSentinel); bad {
		tail := trimSentinel(got[end:], ArenaSentinel)
		c.printf("Overrun after the actual range at +%d! Data is: \n", int(end)+pos)
		c.printf("%s\n(should all be 0x%02x)\n", Dump(tail), ArenaSentinel)
		res.fail(&Failure{Kind: ErrOverrun, Pos: int(end) + pos, Got: hexutil.Bytes(cloneBytes(tail))})
	}

	c.logResult(res)
	return res
}

// RunLdrInstrCheck verifies that load primitive p copies p.Size bytes from
// arena+Misalign into a scratch destination.
func (c *Checker) RunLdrInstrCheck(p *Primitive, arena *Arena, offset int64) *Result {
	res := newResult(p, offset)
	size := p.Size
	if err := arena.check(); err != nil {
		return c.aborted(res, err)
	}
	if _, err := arena.window(0, size); err != nil {
		return c.aborted(res, err)
	}

	dst, err := c.Heap.Alloc(4 * size)
	if err != nil {
		return c.aborted(res, fmt.Errorf("failed to allocate destination buffer: %w", err))
	}
	defer c.free("destination", dst)
	if err := fill(arena.Mem, dst, 4*size, DestSentinel); err != nil {
		return c.aborted(res, fmt.Errorf("failed to fill destination buffer: %w", err))
	}

	if err := arena.Fill(ArenaSentinel); err != nil {
		return c.aborted(res, fmt.Errorf("failed to poison arena: %w", err))
	}
	want := pattern(size)
	if err := write(arena.Mem, arena.Addr+Misalign, want); err != nil {
		return c.aborted(res, fmt.Errorf("failed to write load source: %w", err))
	}

	c.Log.Debug("running load trial", "primitive", p.Name, "tag", p.Tag, "size", size, "arena", arena.Addr)
	if err := p.Transfer(dst, arena.Addr+Misalign, offset); err != nil {
		c.printf("Transfer fault: %v\n", err)
		res.fail(&Failure{Kind: ErrTransferFault, Cause: err})
	}

	// nothing beyond size is checked: the destination is plain scratch memory, not the probed region
	got, err := read(arena.Mem, dst, size)
	if err != nil {
		return c.aborted(res, err)
	}
	if SafeMemcmp(got, want, int(size)) != 0 {
		c.printf("Data mismatch!\n")
		c.printf("Source: \t%s\n", Dump(want))
		c.printf("Dest: \t%s\n", Dump(got))
		res.fail(&Failure{
			Kind: ErrContentMismatch,
			Pos:  firstDiff(got, want),
			Got:  hexutil.Bytes(got),
			Want: hexutil.Bytes(want),
		})
	}

	after, err := arena.Bytes()
	if err != nil {
		return c.aborted(res, err)
	}
	res.Fingerprint = crypto.Keccak256Hash(after)

	c.logResult(res)
	return res
}

func (c *Checker) logResult(res *Result) {
	switch {
	case res.Passed():
		c.Log.Info("trial passed", "primitive", res.Name, "mode", res.Mode, "tag", res.Tag, "fingerprint", res.Fingerprint)
	case res.Lenient():
		c.Log.Info("observational trial mismatch", "primitive", res.Name, "mode", res.Mode, "tag", res.Tag, "err", res.Err())
	default:
		c.Log.Warn("trial failed", "primitive", res.Name, "mode", res.Mode, "tag", res.Tag, "failures", len(res.Failures), "err", res.Err())
	}
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}

// trimSentinel drops the run of trailing sentinel bytes.
func trimSentinel(b []byte, c byte) []byte {
	n := len(b)
	for n > 0 && b[n-1] == c {
		n--
	}
	return b[:n]
}
