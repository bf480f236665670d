package units

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/unit"
	"github.com/giantswarm/cfti/internal/unitfile"
)

// TestType distinguishes a test whose exit code is the pass/fail verdict
// from one that is expected to keep running in the background once
// started (cfti::types::test::TestType).
type TestType int

const (
	TestSimple TestType = iota
	TestDaemon
)

// Test is one loaded .test unit (cfti::types::test::Test), widened per
// spec.md §3 with ExtraArgs: additional argv words appended to ExecStart,
// read from the repeatable Arg= key of the [Exec] section in file order.
type Test struct {
	unit.Base

	Requires []string
	Suggests []string

	Timeout time.Duration
	Type    TestType

	ExecStart       string
	ExecStopSuccess string
	ExecStopFailure string
	ExtraArgs       []string
}

// LoadTest parses a .test unit file, filtering it against jigs and
// rejecting malformed Type=/missing ExecStart as Failed rather than Skip —
// those indicate an author mistake in this unit file, not an
// incompatible-jig situation.
func LoadTest(id, path string, jigs map[string]*Jig, ctl *controller.Controller, cfg config.Config) Result[*Test] {
	uf, err := unitfile.Read(path)
	if err != nil {
		if _, ok := err.(*unitfile.NotFoundError); ok {
			return Skipped[*Test]()
		}
		return Failure[*Test](&config.UnitLoadError{Kind: "test", ID: id, Path: path, Err: err})
	}

	if !uf.HasSection("Test") {
		return Failure[*Test](&config.UnitLoadError{Kind: "test", ID: id, Path: path, Err: errors.New("missing [Test] section")})
	}

	jigsField, hasJigs := uf.Get("Test", "Jigs")
	if !compatibleWithJigs(jigsField, hasJigs, jigs) {
		return Skipped[*Test]()
	}

	testType := TestSimple
	if s, ok := uf.Get("Test", "Type"); ok {
		switch strings.ToLower(s) {
		case "simple":
			testType = TestSimple
		case "daemon":
			testType = TestDaemon
		default:
			return Failure[*Test](&config.UnitLoadError{Kind: "test", ID: id, Path: path, Err: errors.New("invalid Type: " + s)})
		}
	}

	execStart, ok := uf.Get("Test", "ExecStart")
	if !ok {
		return Failure[*Test](&config.UnitLoadError{Kind: "test", ID: id, Path: path, Err: errors.New("missing ExecStart")})
	}

	execStop, _ := uf.Get("Test", "ExecStop")
	execStopSuccess, ok := uf.Get("Test", "ExecStopSuccess")
	if !ok {
		execStopSuccess = execStop
	}
	execStopFailure, ok := uf.Get("Test", "ExecStopFail")
	if !ok {
		execStopFailure = execStop
	}

	description, _ := uf.Get("Unit", "Description")
	name, ok := uf.Get("Test", "Name")
	if !ok {
		name = id
	}

	timeout := config.DefaultTimeout
	if s, ok := uf.Get("Test", "Timeout"); ok {
		secs, parseErr := strconv.Atoi(s)
		if parseErr != nil {
			return Failure[*Test](&config.UnitLoadError{Kind: "test", ID: id, Path: path, Err: parseErr})
		}
		timeout = time.Duration(secs) * time.Second
	}

	var requires, suggests []string
	if s, ok := uf.Get("Test", "Requires"); ok {
		requires = splitCommaTrim(s)
	}
	if s, ok := uf.Get("Test", "Suggests"); ok {
		suggests = splitCommaTrim(s)
	}

	// ExtraArgs is new: the values of the repeatable [Exec] Arg= key, in file
	// order of appearance, appended after ExecStart's own arguments.
	extraArgs := uf.GetAll("Exec", "Arg")

	return Ok(&Test{
		Base: unit.Base{
			ID:          id,
			UnitKind:    unit.KindTest,
			Name:        name,
			Description: description,
			Ctl:         ctl,
		},
		Requires:        requires,
		Suggests:        suggests,
		Timeout:         timeout,
		Type:            testType,
		ExecStart:       execStart,
		ExecStopSuccess: execStopSuccess,
		ExecStopFailure: execStopFailure,
		ExtraArgs:       extraArgs,
	})
}

// FullCommand joins ExecStart with its ExtraArgs for handing to the process
// supervisor, which re-tokenizes the whole line (spec.md §3).
func (t *Test) FullCommand() string {
	if len(t.ExtraArgs) == 0 {
		return t.ExecStart
	}
	return t.ExecStart + " " + strings.Join(t.ExtraArgs, " ")
}
