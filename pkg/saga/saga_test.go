package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negobi/negobi-gateway/pkg/logger"
)

func testRunner() *Runner {
	return NewRunner(logger.New("test", "test"))
}

func step(name string, trace *[]string, fail error) Step {
	return Step{
		Name: name,
		Action: func(ctx context.Context) error {
			*trace = append(*trace, name)
			return fail
		},
		Compensate: func(ctx context.Context) error {
			*trace = append(*trace, "undo:"+name)
			return nil
		},
	}
}

func TestRun_AllStepsSucceed(t *testing.T) {
	var trace []string

	err := testRunner().Run(context.Background(), "transfer",
		step("a", &trace, nil),
		step("b", &trace, nil),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, trace)
}

func TestRun_CompensatesInReverseOrder(t *testing.T) {
	var trace []string
	boom := errors.New("boom")

	err := testRunner().Run(context.Background(), "transfer",
		step("a", &trace, nil),
		step("b", &trace, nil),
		step("c", &trace, boom),
	)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b", "c", "undo:b", "undo:a"}, trace)
}

func TestRun_NilCompensateIsSkipped(t *testing.T) {
	var trace []string
	boom := errors.New("boom")

	err := testRunner().Run(context.Background(), "transfer",
		Step{
			Name:   "a",
			Action: func(ctx context.Context) error { trace = append(trace, "a"); return nil },
		},
		step("b", &trace, boom),
	)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, trace)
}

func TestRun_ReportsFailedCompensation(t *testing.T) {
	boom := errors.New("boom")
	undoFailed := errors.New("undo failed")

	err := testRunner().Run(context.Background(), "transfer",
		Step{
			Name:       "a",
			Action:     func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error { return undoFailed },
		},
		Step{
			Name:   "b",
			Action: func(ctx context.Context) error { return boom },
		},
	)

	var compErr *CompensationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "b", compErr.Step)
	assert.ErrorIs(t, compErr.Cause, boom)
	require.Len(t, compErr.Unrecovered, 1)
	assert.ErrorIs(t, compErr.Unrecovered[0], undoFailed)
}

func TestRun_CompensatesDespiteCancelledContext(t *testing.T) {
	undone := false
	ctx, cancel := context.WithCancel(context.Background())

	err := testRunner().Run(ctx, "transfer",
		Step{
			Name:   "a",
			Action: func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				require.NoError(t, ctx.Err())
				undone = true
				return nil
			},
		},
		Step{
			Name: "b",
			Action: func(ctx context.Context) error {
				cancel()
				return ctx.Err()
			},
		},
	)

	require.Error(t, err)
	assert.True(t, undone)
}
