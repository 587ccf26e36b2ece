package probe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrContentMismatch: the window does not hold the expected bytes.
	ErrContentMismatch = errors.New("content mismatch")
	// ErrUnderrun: bytes before the window were modified.
	ErrUnderrun = errors.New("under-run")
	// ErrOverrun: bytes after the window were modified.
	ErrOverrun = errors.New("over-run")
	// ErrTransferFault: the primitive itself returned an error.
	ErrTransferFault = errors.New("transfer fault")
)

// Failure is one failed assertion of a trial. Pos is relative to the arena
// for store trials, and to the destination buffer for load trials.
type Failure struct {
	Kind  error
	Pos   int
	Got   hexutil.Bytes
	Want  hexutil.Bytes
	Cause error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%v: %v", f.Kind, f.Cause)
	}
	return fmt.Sprintf("%v at +%d", f.Kind, f.Pos)
}

func (f *Failure) Unwrap() []error {
	if f.Cause != nil {
		return []error{f.Kind, f.Cause}
	}
	return []error{f.Kind}
}

func (f *Failure) MarshalJSON() ([]byte, error) {
	type failureJSON struct {
		Kind  string        `json:"kind"`
		Pos   int           `json:"pos"`
		Got   hexutil.Bytes `json:"got,omitempty"`
		Want  hexutil.Bytes `json:"want,omitempty"`
		Cause string        `json:"cause,omitempty"`
	}
	out := failureJSON{Kind: f.Kind.Error(), Pos: f.Pos, Got: f.Got, Want: f.Want}
	if f.Cause != nil {
		out.Cause = f.Cause.Error()
	}
	return json.Marshal(out)
}

// Result is the outcome of one trial.
type Result struct {
	Name          string `json:"name"`
	Tag           Tag    `json:"tag"`
	Mode          Mode   `json:"mode"`
	Size          uint64 `json:"size"`
	Offset        int64  `json:"offset"`
	Observational bool   `json:"observational,omitempty"`

	Failures []*Failure `json:"failures,omitempty"`
	Aborted  string     `json:"aborted,omitempty"`

	// Fingerprint is the keccak256 of the arena after the trial.
	Fingerprint common.Hash `json:"fingerprint"`

	abortErr error
}

func newResult(p *Primitive, offset int64) *Result {
	return &Result{
		Name:          p.Name,
		Tag:           p.Tag,
		Mode:          p.Mode,
		Size:          p.Size,
		Offset:        offset,
		Observational: p.Observational,
	}
}

func (r *Result) fail(f *Failure) {
	r.Failures = append(r.Failures, f)
}

func (r *Result) abort(err error) *Result {
	r.abortErr = err
	r.Aborted = err.Error()
	return r
}

// Passed is true when the trial ran to completion without any failed assertion.
func (r *Result) Passed() bool {
	return r.abortErr == nil && r.Aborted == "" && len(r.Failures) == 0
}

// Lenient is true for observational trials at a non-zero offset, the one case
// such a primitive cannot honour. At offset 0 they are checked strictly.
func (r *Result) Lenient() bool {
	return r.Observational && r.Offset != 0
}

func (r *Result) IsAborted() bool {
	return r.abortErr != nil || r.Aborted != ""
}

// Has reports whether any failure of the trial is of the given kind.
func (r *Result) Has(kind error) bool {
	for _, f := range r.Failures {
		if errors.Is(f, kind) {
			return true
		}
	}
	return false
}

// Failure returns the first failure of the given kind, or nil.
func (r *Result) Failure(kind error) *Failure {
	for _, f := range r.Failures {
		if errors.Is(f, kind) {
			return f
		}
	}
	return nil
}

// Err joins the abort cause and every failure, nil when the trial passed.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Failures)+1)
	if r.abortErr != nil {
		errs = append(errs, r.abortErr)
	}
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

type Summary struct {
	Passed        int `json:"passed"`
	Failed        int `json:"failed"`
	Aborted       int `json:"aborted"`
	Observational int `json:"observational"`
}

func (s *Summary) Add(r *Result) {
	switch {
	case r.IsAborted():
		s.Aborted++
	case r.Passed():
		s.Passed++
	case r.Lenient():
		s.Observational++
	default:
		s.Failed++
	}
}

func (s *Summary) Merge(o Summary) {
	s.Passed += o.Passed
	s.Failed += o.Failed
	s.Aborted += o.Aborted
	s.Observational += o.Observational
}

// Strict counts trials that should fail a test run.
func (s Summary) Strict() int {
	return s.Failed + s.Aborted
}

func (s Summary) String() string {
	return fmt.Sprintf("%d passed, %d failed, %d aborted, %d observational mismatches",
		s.Passed, s.Failed, s.Aborted, s.Observational)
}

// RunReport collects every trial of one driver invocation.
type RunReport struct {
	Arena         uint64    `json:"arena"`
	BackingOffset uint64    `json:"backingOffset"`
	Results       []*Result `json:"results"`
	Summary
}

func (rr *RunReport) add(r *Result) {
	rr.Results = append(rr.Results, r)
	rr.Summary.Add(r)
}
