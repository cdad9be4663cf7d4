package tapevm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/tapevm/internal/runtime"
	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/aretw0/tapevm/pkg/keylock"
	"github.com/aretw0/tapevm/pkg/ports"
	"github.com/aretw0/tapevm/pkg/token"
)

// Request and Response are re-exported so most callers only import this package.
type (
	Request  = ports.Request
	Response = ports.Response
)

// Engine is the high-level entry point of tapevm.
// It wires the validator, the machine, the token codec and the optional result cache.
// The Engine holds no per-program state; the caller keeps the token.
type Engine struct {
	machine   *runtime.Machine
	maxSteps  uint64
	jumpTable bool
	codec     token.Codec
	cache     ports.ResultCache
	cacheTTL  time.Duration
	locks     *keylock.Locks
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

var _ ports.Executor = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxSteps sets the instruction budget of one invocation (default runtime.DefaultMaxSteps).
// Zero disables the limit.
func WithMaxSteps(n uint64) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithCodec replaces the default base64 JSON token codec, e.g. with a token.SealedCodec.
func WithCodec(c token.Codec) Option {
	return func(e *Engine) {
		e.codec = c
	}
}

// WithCache enables memoization of successful invocations.
// A ttl of zero keeps entries until the backend evicts them.
func WithCache(cache ports.ResultCache, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = cache
		e.cacheTTL = ttl
	}
}

// WithSingleFlight makes concurrent cache misses for the same request wait for
// one computation instead of each running the program. It only applies with WithCache.
func WithSingleFlight(locks *keylock.Locks) Option {
	return func(e *Engine) {
		e.locks = locks
	}
}

// WithLifecycleHooks registers observability hooks. Calling it twice merges the sets.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithJumpTable precomputes bracket pairs once per invocation.
func WithJumpTable() Option {
	return func(e *Engine) {
		e.jumpTable = true
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{
		maxSteps: runtime.DefaultMaxSteps,
		codec:    token.NewJSONCodec(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.machine = runtime.NewMachine(
		runtime.WithMaxSteps(eng.maxSteps),
		runtime.WithJumpTable(eng.jumpTable),
	)
	return eng
}

// Validate reports whether program may be executed.
func (e *Engine) Validate(program string) error {
	return runtime.CheckProgram(program)
}

// Execute runs one invocation.
//
// Without a prior token the request's program starts on a fresh tape. With one, the
// program carried by the token is resumed and req.Program is ignored. A rejected input
// returns the caller's prior token unchanged so the same state can be retried.
// Faults come back as errors and produce no token.
func (e *Engine) Execute(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()
	limit := e.limit(req.MaxSteps)

	if e.cache == nil {
		return e.run(ctx, req, "", limit, started)
	}

	key := CacheKey(req)
	if resp, ok := e.lookup(ctx, key, limit); ok {
		e.fire(ctx, eventFor(resp.Outcome), len(resp.Program), 0, resp.Steps, started, nil, true)
		return resp, nil
	}
	if e.locks == nil {
		return e.run(ctx, req, key, limit, started)
	}

	var resp *Response
	err := e.locks.Do(ctx, key, func(ctx context.Context) error {
		// Filled by another caller while this one waited.
		if hit, ok := e.lookup(ctx, key, limit); ok {
			e.fire(ctx, eventFor(hit.Outcome), len(hit.Program), 0, hit.Steps, started, nil, true)
			resp = hit
			return nil
		}
		var err error
		resp, err = e.run(ctx, req, key, limit, started)
		return err
	})
	if errors.Is(err, keylock.ErrLockAcquire) {
		e.logger.Warn("single flight lock unavailable", "error", err)
		return e.run(ctx, req, key, limit, started)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// run executes the request on the machine. A non-empty key stores the result in the cache.
func (e *Engine) run(ctx context.Context, req Request, key string, limit uint64, started time.Time) (*Response, error) {
	state, resumed, err := e.load(req)
	if err != nil {
		return nil, err
	}

	startType := domain.EventStart
	if resumed {
		startType = domain.EventResume
	}
	e.fire(ctx, startType, state.Len(), state.InstructionPointer, 0, started, nil, false)

	machine := e.machine
	if limit != e.maxSteps {
		machine = runtime.NewMachine(runtime.WithMaxSteps(limit), runtime.WithJumpTable(e.jumpTable))
	}

	result, err := machine.Step(ctx, state, req.Input)
	if err != nil {
		e.logger.Warn("execution fault",
			"kind", domain.Kind(err),
			"ip", state.InstructionPointer,
			"steps", result.Steps,
			"error", err)
		e.fire(ctx, domain.EventFault, state.Len(), state.InstructionPointer, result.Steps, started, err, false)
		return nil, err
	}

	resp := &Response{
		Program:       state.Program,
		Output:        state.Output,
		AwaitingInput: state.AwaitingInput,
		Outcome:       result.Outcome,
		Steps:         result.Steps,
	}

	if result.Outcome == domain.OutcomeInputRejected {
		resp.NextState = req.PriorState
		e.logger.Debug("input rejected", "ip", state.InstructionPointer)
		e.fire(ctx, domain.EventReject, state.Len(), state.InstructionPointer, 0, started, nil, false)
		return resp, nil
	}

	next, err := e.codec.Encode(state)
	if err != nil {
		return nil, err
	}
	resp.NextState = next

	e.logger.Debug("execution complete",
		"outcome", result.Outcome,
		"steps", result.Steps,
		"ip", state.InstructionPointer)

	if key != "" {
		e.store(ctx, key, resp)
	}
	e.fire(ctx, eventFor(result.Outcome), state.Len(), state.InstructionPointer, result.Steps, started, nil, false)
	return resp, nil
}

func (e *Engine) limit(requested uint64) uint64 {
	if requested == 0 {
		return e.maxSteps
	}
	if e.maxSteps == 0 || requested < e.maxSteps {
		return requested
	}
	return e.maxSteps
}

// load returns the state to run and whether it came from a token.
func (e *Engine) load(req Request) (*domain.State, bool, error) {
	if token.IsEmpty(req.PriorState) {
		if err := runtime.CheckProgram(req.Program); err != nil {
			return nil, false, err
		}
		return domain.NewState(req.Program), false, nil
	}

	state, err := e.codec.Decode(req.PriorState)
	if err != nil {
		return nil, true, err
	}
	if req.Program != "" && req.Program != state.Program {
		e.logger.Debug("request program differs from token, using token", "program_length", state.Len())
	}
	if err := runtime.CheckProgram(state.Program); err != nil {
		return nil, true, err
	}
	return state, true, nil
}

func (e *Engine) lookup(ctx context.Context, key string, limit uint64) (*Response, bool) {
	hit, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			e.logger.Warn("result cache read failed", "error", err)
		}
		return nil, false
	}
	// A smaller budget might have faulted on this program.
	if limit > 0 && hit.Steps > limit {
		return nil, false
	}
	e.logger.Debug("result cache hit", "outcome", hit.Outcome, "steps", hit.Steps)
	return &Response{
		Program:       hit.Program,
		Output:        hit.Output,
		NextState:     hit.NextState,
		AwaitingInput: hit.AwaitingInput,
		Outcome:       hit.Outcome,
		Steps:         hit.Steps,
		Cached:        true,
	}, true
}

func (e *Engine) store(ctx context.Context, key string, resp *Response) {
	entry := &domain.CachedResult{
		Program:       resp.Program,
		Output:        resp.Output,
		NextState:     resp.NextState,
		AwaitingInput: resp.AwaitingInput,
		Outcome:       resp.Outcome,
		Steps:         resp.Steps,
	}
	if err := e.cache.Set(ctx, key, entry, e.cacheTTL); err != nil {
		e.logger.Warn("result cache write failed", "error", err)
	}
}

func (e *Engine) fire(ctx context.Context, typ domain.EventType, length int, ip uint32, steps uint64, started time.Time, err error, cached bool) {
	now := time.Now()
	e.hooks.Fire(ctx, &domain.Event{
		Timestamp:          now,
		Type:               typ,
		ProgramLength:      length,
		InstructionPointer: ip,
		Steps:              steps,
		Duration:           now.Sub(started),
		Err:                err,
		Cached:             cached,
	})
}

func eventFor(o domain.Outcome) domain.EventType {
	switch o {
	case domain.OutcomeSuspended:
		return domain.EventSuspend
	case domain.OutcomeInputRejected:
		return domain.EventReject
	default:
		return domain.EventFinish
	}
}

// CacheKey derives the memoization key of a request.
// Each part is length prefixed so that ("ab","c") and ("a","bc") differ.
// The request program only counts when there is no prior token, since the token's program wins.
func CacheKey(req Request) string {
	h := sha256.New()
	part := func(s string) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}

	if token.IsEmpty(req.PriorState) {
		part(req.Program)
		part("")
	} else {
		part("")
		part(req.PriorState)
	}
	if req.Input != nil {
		h.Write([]byte{1})
		part(*req.Input)
	} else {
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
