package runtime_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/tapevm/internal/runtime"
	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

func ptr[T any](v T) *T { return &v }

func run(t *testing.T, m *runtime.Machine, program string) (*domain.State, runtime.Result) {
	t.Helper()
	state := domain.NewState(program)
	res, err := m.Step(context.Background(), state, nil)
	require.NoError(t, err)
	return state, res
}

func TestMachine_HelloWorld(t *testing.T) {
	for _, table := range []bool{false, true} {
		m := runtime.NewMachine(runtime.WithJumpTable(table))
		state, res := run(t, m, helloWorld)

		assert.Equal(t, domain.OutcomeFinished, res.Outcome)
		assert.Equal(t, "Hello World!\n", state.Output)
		assert.False(t, state.AwaitingInput)
		assert.True(t, state.Finished())
		assert.Positive(t, res.Steps)
	}
}

func TestMachine_Wraparound(t *testing.T) {
	m := runtime.NewMachine()

	state, _ := run(t, m, "-")
	assert.Equal(t, byte(255), state.Tape[0])

	state, _ = run(t, m, strings.Repeat("+", 256))
	assert.Equal(t, byte(0), state.Tape[0])

	state, _ = run(t, m, "-+")
	assert.Equal(t, byte(0), state.Tape[0])
}

func TestMachine_OutputIsCodePoint(t *testing.T) {
	state, _ := run(t, runtime.NewMachine(), "-.")
	assert.Equal(t, "ÿ", state.Output)
	assert.Equal(t, []rune{255}, []rune(state.Output))
}

func TestMachine_SuspendAndResume(t *testing.T) {
	m := runtime.NewMachine()
	ctx := context.Background()
	state := domain.NewState(",.")

	// 1. First invocation suspends immediately
	res, err := m.Step(ctx, state, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuspended, res.Outcome)
	assert.True(t, state.AwaitingInput)
	assert.Empty(t, state.Output)
	assert.Equal(t, uint32(0), state.InstructionPointer, "suspension keeps the pointer on ','")

	// 2. Resume with a value
	res, err = m.Step(ctx, state, ptr("65"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFinished, res.Outcome)
	assert.Equal(t, "A", state.Output)
	assert.False(t, state.AwaitingInput)
}

func TestMachine_ResumeMatchesHardCodedInput(t *testing.T) {
	m := runtime.NewMachine()
	ctx := context.Background()

	interactive := domain.NewState(",[->+<]>.")
	_, err := m.Step(ctx, interactive, nil)
	require.NoError(t, err)
	_, err = m.Step(ctx, interactive, ptr("72"))
	require.NoError(t, err)

	hardCoded, _ := run(t, m, strings.Repeat("+", 72)+"[->+<]>.")

	assert.Equal(t, hardCoded.Output, interactive.Output)
	assert.Equal(t, "H", interactive.Output)
}

func TestMachine_MultipleInputsAccumulateOutput(t *testing.T) {
	m := runtime.NewMachine()
	ctx := context.Background()
	state := domain.NewState(",.,.")

	_, err := m.Step(ctx, state, nil)
	require.NoError(t, err)
	res, err := m.Step(ctx, state, ptr("h"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuspended, res.Outcome)
	assert.Equal(t, "h", state.Output)

	res, err = m.Step(ctx, state, ptr("i"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFinished, res.Outcome)
	assert.Equal(t, "hi", state.Output)
}

func TestMachine_InputRejected(t *testing.T) {
	m := runtime.NewMachine()
	ctx := context.Background()
	state := domain.NewState("+.,.")

	_, err := m.Step(ctx, state, nil)
	require.NoError(t, err)
	before := state.Clone()

	for _, input := range []*string{nil, ptr("AA"), ptr("256"), ptr("-1")} {
		res, err := m.Step(ctx, state, input)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeInputRejected, res.Outcome)
		assert.Zero(t, res.Steps)
		assert.Equal(t, domain.InputDiagnostic, state.Output)
		assert.True(t, state.AwaitingInput)
		assert.Equal(t, before.InstructionPointer, state.InstructionPointer)
		assert.Equal(t, before.Tape, state.Tape)
	}
}

func TestMachine_FinishedStateIsNoop(t *testing.T) {
	m := runtime.NewMachine()
	state, _ := run(t, m, "+.")
	snapshot := state.Clone()

	res, err := m.Step(context.Background(), state, ptr("9"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFinished, res.Outcome)
	assert.Zero(t, res.Steps)
	assert.True(t, snapshot.Equal(state))
}

func TestMachine_JumpLandsPastMatch(t *testing.T) {
	// Zero cell: '[' jumps to ']' and execution continues after it.
	state, _ := run(t, runtime.NewMachine(), "[+++]++")
	assert.Equal(t, byte(2), state.Tape[0])
}

func TestMachine_PointerOutOfRange(t *testing.T) {
	m := runtime.NewMachine()

	_, err := m.Step(context.Background(), domain.NewState("+<"), nil)
	var pe *domain.PointerError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, uint32(1), pe.Position)
	assert.Equal(t, "<", pe.Symbol)

	_, err = m.Step(context.Background(), domain.NewState(strings.Repeat(">", domain.TapeSize)), nil)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, uint32(domain.TapeSize-1), pe.DataPointer)
	assert.ErrorIs(t, err, domain.ErrPointerOutOfRange)

	// The last cell itself is reachable.
	state, _ := run(t, m, strings.Repeat(">", domain.TapeSize-1)+"+")
	assert.Equal(t, byte(1), state.Tape[domain.TapeSize-1])
}

func TestMachine_UnmatchedBrackets(t *testing.T) {
	for _, table := range []bool{false, true} {
		m := runtime.NewMachine(runtime.WithJumpTable(table))

		_, err := m.Step(context.Background(), domain.NewState("[+"), nil)
		assert.ErrorIs(t, err, domain.ErrUnmatchedBracket)

		_, err = m.Step(context.Background(), domain.NewState("+]"), nil)
		var se *domain.StructuralError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "]", se.Symbol)

		// Never jumped across, so never detected.
		state, res := run(t, m, "+[.")
		assert.Equal(t, domain.OutcomeFinished, res.Outcome)
		assert.Equal(t, "\x01", state.Output)
	}
}

func TestMachine_InternalError(t *testing.T) {
	_, err := runtime.NewMachine().Step(context.Background(), domain.NewState("+x"), nil)

	var ie *domain.InternalError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "x", ie.Symbol)
	assert.Equal(t, uint32(1), ie.Position)
}

func TestMachine_StepLimit(t *testing.T) {
	m := runtime.NewMachine(runtime.WithMaxSteps(1000))

	res, err := m.Step(context.Background(), domain.NewState("+[]"), nil)
	assert.ErrorIs(t, err, domain.ErrStepLimit)
	assert.Equal(t, uint64(1000), res.Steps)

	// A program of exactly the budget still finishes.
	state, res := run(t, m, strings.Repeat("+", 1000))
	assert.Equal(t, domain.OutcomeFinished, res.Outcome)
	assert.Equal(t, byte(1000%256), state.Tape[0])
}

func TestMachine_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runtime.NewMachine(runtime.WithMaxSteps(0)).Step(ctx, domain.NewState("+[]"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMachine_ResumeFinished(t *testing.T) {
	m := runtime.NewMachine()
	state, _ := run(t, m, "+++.")

	res, err := m.Step(context.Background(), state, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFinished, res.Outcome)
	assert.Zero(t, res.Steps)
	assert.Equal(t, "\x03", state.Output)
}
