package compiler

import (
	"strings"
	"testing"
)

func analyzeSource(t *testing.T, source string) []string {
	t.Helper()
	prog, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return AnalyzeProgram(prog)
}

func TestAnalyzer_UndefinedVariable(t *testing.T) {
	warnings := analyzeSource(t, `let x = missing + 1;`)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "'missing'") && strings.Contains(w, "may be undefined") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected warning about undefined variable, got: %v", warnings)
	}
}

func TestAnalyzer_DefinedVariable(t *testing.T) {
	source := `function f(x: number) {
	let y = x + 1;
	return y;
}`
	warnings := analyzeSource(t, source)

	for _, w := range warnings {
		if strings.Contains(w, "'x'") || strings.Contains(w, "'y'") {
			t.Errorf("unexpected warning: %s", w)
		}
	}
}

func TestAnalyzer_CapabilityAndConstantNamesPass(t *testing.T) {
	source := `let scr = lv_scr_act();
lv_obj_align(scr, LV_ALIGN_CENTER, 0, 0);`
	warnings := analyzeSource(t, source)

	if len(warnings) != 0 {
		t.Errorf("expected no diagnostics, got: %v", warnings)
	}
}

func TestAnalyzer_KnownGlobals(t *testing.T) {
	prog, err := Parse(`print(42);`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	a := NewAnalyzer()
	a.Analyze(prog)
	found := false
	for _, w := range a.Errors() {
		if strings.Contains(w, "'print'") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected warning about 'print', got: %v", a.Errors())
	}

	a = NewAnalyzer()
	a.AddKnownGlobal("print")
	a.Analyze(prog)
	for _, w := range a.Errors() {
		if strings.Contains(w, "'print'") {
			t.Errorf("unexpected warning about known global: %s", w)
		}
	}
}

func TestAnalyzer_ConstReassignment(t *testing.T) {
	warnings := analyzeSource(t, `const limit = 3;
limit = 4;`)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "cannot assign to 'limit' declared const") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected const reassignment error, got: %v", warnings)
	}
}

func TestAnalyzer_ConstUpdate(t *testing.T) {
	warnings := analyzeSource(t, `const n = 1;
n++;`)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "cannot assign to 'n' declared const") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected const update error, got: %v", warnings)
	}
}

func TestAnalyzer_ConstWithoutInitializer(t *testing.T) {
	warnings := analyzeSource(t, `const empty;`)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "const 'empty' declared without an initializer") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected missing-initializer error, got: %v", warnings)
	}
}

func TestAnalyzer_AssignToReservedNamespace(t *testing.T) {
	warnings := analyzeSource(t, `LV_EVENT_CLICKED = 9;`)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "cannot assign to constant 'LV_EVENT_CLICKED'") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected constant assignment error, got: %v", warnings)
	}

	warnings = analyzeSource(t, `lv_scr_act = 1;`)
	found = false
	for _, w := range warnings {
		if strings.Contains(w, "cannot assign to capability 'lv_scr_act'") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected capability assignment error, got: %v", warnings)
	}
}

func TestAnalyzer_Redeclaration(t *testing.T) {
	warnings := analyzeSource(t, `let x = 1;
let x = 2;`)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "'x' redeclared in the same scope") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected redeclaration warning, got: %v", warnings)
	}
}

func TestAnalyzer_ShadowingInInnerBlock(t *testing.T) {
	source := `let x = 1;
{
	let x = 2;
}`
	warnings := analyzeSource(t, source)

	for _, w := range warnings {
		if strings.Contains(w, "redeclared") {
			t.Errorf("unexpected redeclaration warning for shadowed name: %s", w)
		}
	}
}

func TestAnalyzer_UnreachableCode(t *testing.T) {
	source := `function f() {
	return 1;
	let a = 2;
	let b = 3;
}`
	warnings := analyzeSource(t, source)

	count := 0
	for _, w := range warnings {
		if strings.Contains(w, "unreachable code after return") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one unreachable warning, got %d in %v", count, warnings)
	}
}

func TestAnalyzer_DuplicateParameter(t *testing.T) {
	warnings := analyzeSource(t, `function f(a, a) {
	return a;
}`)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "repeats parameter 'a'") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected duplicate parameter error, got: %v", warnings)
	}
}

func TestAnalyzer_TopLevelFunctionsHoisted(t *testing.T) {
	source := `setup();

function setup() {
	helper();
}

function helper() {
}`
	warnings := analyzeSource(t, source)

	if len(warnings) != 0 {
		t.Errorf("expected no diagnostics for forward calls, got: %v", warnings)
	}
}

func TestAnalyzer_InvalidAssignmentTarget(t *testing.T) {
	warnings := analyzeSource(t, `let a = 1;
a.b = 2;`)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "invalid assignment target") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected invalid-target error, got: %v", warnings)
	}
}

func TestAnalyzer_DottedNamespaceIsSilent(t *testing.T) {
	warnings := analyzeSource(t, `host.cstring("x");`)

	if len(warnings) != 0 {
		t.Errorf("expected no diagnostics for dotted binding path, got: %v", warnings)
	}
}

func TestAnalyzer_AssignToUndeclared(t *testing.T) {
	warnings := analyzeSource(t, `counter = 1;`)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "assignment to undeclared variable 'counter'") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected undeclared-assignment warning, got: %v", warnings)
	}
}

func TestAnalyzer_HasErrors(t *testing.T) {
	prog, err := Parse(`let x = missing;`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	a := NewAnalyzer()
	a.Analyze(prog)
	if a.HasErrors() {
		t.Errorf("warnings alone should not count as errors: %v", a.Errors())
	}

	prog, err = Parse(`const c = 1; c = 2;`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	a = NewAnalyzer()
	a.Analyze(prog)
	if !a.HasErrors() {
		t.Errorf("expected HasErrors after const reassignment, got: %v", a.Errors())
	}
}

func TestAnalyzer_PositionInDiagnostics(t *testing.T) {
	warnings := analyzeSource(t, `let a = 1;
let b = missing;`)

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "line 2, column") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected position information in warning, got: %v", warnings)
	}
}
