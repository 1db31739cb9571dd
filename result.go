package formskema

import "context"

type resultKind int

const (
	resultPass resultKind = iota
	resultFail
	resultMessage
	resultMultiple
	resultAsync
)

// Result is the outcome of a custom validator. The zero Result passes.
type Result struct {
	kind    resultKind
	message string
	results []Result
	async   func(ctx context.Context) (Result, error)
}

// Pass reports no error.
func Pass() Result { return Result{} }

// Fail records the validator's error message.
func Fail() Result { return Result{kind: resultFail} }

// FailWith records msg instead of the validator's error message.
func FailWith(msg string) Result { return Result{kind: resultMessage, message: msg} }

// Bool passes when ok is true and fails otherwise.
func Bool(ok bool) Result {
	if ok {
		return Pass()
	}
	return Fail()
}

// Multiple combines results; each failing element records its own message.
func Multiple(results ...Result) Result { return Result{kind: resultMultiple, results: results} }

// FailEach records every message in msgs.
func FailEach(msgs ...string) Result {
	rs := make([]Result, len(msgs))
	for i, m := range msgs {
		rs[i] = FailWith(m)
	}
	return Multiple(rs...)
}

// Async defers the outcome to fn, which runs in its own goroutine. The
// validation that produced it waits for fn before completing, and an error
// returned by fn fails that validation.
func Async(fn func(ctx context.Context) (Result, error)) Result {
	return Result{kind: resultAsync, async: fn}
}

// IsAsync reports whether r defers its outcome.
func (r Result) IsAsync() bool { return r.kind == resultAsync }
