package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/platform"
)

type fakeRunner struct {
	calls [][]string
}

func (f *fakeRunner) Run(name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	return nil
}

func testExecutor() (*Executor, *fakeRunner, *[]string) {
	runner := &fakeRunner{}
	var copied []string
	e := NewExecutor()
	e.SetRunner(runner)
	e.SetCopier(func(s string) error {
		copied = append(copied, s)
		return nil
	})
	return e, runner, &copied
}

func TestExecuteApplication(t *testing.T) {
	e, runner, _ := testExecutor()

	exit, err := e.Execute(catalog.NewApplication("Firefox", "/Applications/Firefox.app"))
	require.NoError(t, err)
	assert.True(t, exit)
	require.Len(t, runner.calls, 1)
	if platform.Detect() == platform.PlatformMacOS {
		assert.Equal(t, []string{"open", "-a", "/Applications/Firefox.app"}, runner.calls[0])
	} else {
		assert.Equal(t, "/Applications/Firefox.app", runner.calls[0][len(runner.calls[0])-1])
	}
}

func TestExecuteCopiesValueKinds(t *testing.T) {
	e, runner, copied := testExecutor()

	for _, item := range []catalog.Item{
		catalog.NewCalculatorResult("2+2", "4"),
		catalog.NewClipboardEntry("some text", "some text\n"),
		catalog.NewNixPackage("ripgrep v14", "ripgrep"),
	} {
		exit, err := e.Execute(item)
		require.NoError(t, err)
		assert.True(t, exit)
	}
	assert.Equal(t, []string{"4", "some text\n", "ripgrep"}, *copied)
	assert.Empty(t, runner.calls)
}

func TestExecuteOpensURLKinds(t *testing.T) {
	e, runner, _ := testExecutor()

	_, err := e.Execute(catalog.NewRustCrate("serde v1", "https://crates.io/crates/serde"))
	require.NoError(t, err)
	_, err = e.Execute(catalog.NewHomebrewPackage("jq v1.7.1", "https://formulae.brew.sh/formula/jq"))
	require.NoError(t, err)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, "https://crates.io/crates/serde", runner.calls[0][len(runner.calls[0])-1])
}

func TestExecuteSystemCommand(t *testing.T) {
	e, runner, _ := testExecutor()

	exit, err := e.Execute(catalog.NewSystemCommand("Sleep", "pmset sleepnow"))
	require.NoError(t, err)
	assert.True(t, exit)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"sh", "-c", "pmset sleepnow"}, runner.calls[0])
}

func TestExecuteModeSwitchRejected(t *testing.T) {
	e, _, _ := testExecutor()

	exit, err := e.Execute(catalog.NewModeSwitch("Clipboard History", catalog.ModeClipboardHistory))
	assert.Error(t, err)
	assert.False(t, exit)
}
