package cinterp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSource(t *testing.T, src string, stdin string) (string, int32, error) {
	t.Helper()
	tree, err := Parse(src)
	require.NoError(t, err)
	_, err = Analyze(tree, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	interp := NewInterpreter(nil, nil, nil, strings.NewReader(stdin), &out)
	status, err := interp.Run(tree)
	return out.String(), status, err
}

func TestInterpreter_HelloWorld(t *testing.T) {
	out, status, err := runSource(t, `
		#include <stdio.h>
		int main() { printf("hello, world"); return 0; }
	`, "")
	require.NoError(t, err)
	assert.Equal(t, int32(0), status)
	assert.Equal(t, "hello, world", out)
}

func TestInterpreter_ArithmeticAndPrintf(t *testing.T) {
	out, _, err := runSource(t, `
		#include <stdio.h>
		int main() { int x = 2 + 3 * 4; printf("%d", x); return 0; }
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "14", out)
}

func TestInterpreter_WhileLoopSum(t *testing.T) {
	out, _, err := runSource(t, `
		#include <stdio.h>
		int main() {
			int i = 0;
			int sum = 0;
			while (i < 5) {
				sum = sum + i;
				i = i + 1;
			}
			printf("%d", sum);
			return 0;
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "10", out)
}

func TestInterpreter_ForLoopVariableVisibleToCondAndStep(t *testing.T) {
	out, _, err := runSource(t, `
		#include <stdio.h>
		int main() {
			int total = 0;
			for (int i = 0; i < 4; i++) {
				total = total + i;
			}
			printf("%d", total);
			return 0;
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "6", out)
}

func TestInterpreter_RecursiveFunctionCall(t *testing.T) {
	out, _, err := runSource(t, `
		#include <stdio.h>
		int fact(int n) {
			if (n <= 1) {
				return 1;
			}
			return n * fact(n - 1);
		}
		int main() { printf("%d", fact(5)); return 0; }
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "120", out)
}

func TestInterpreter_StructFieldReadWrite(t *testing.T) {
	out, _, err := runSource(t, `
		#include <stdio.h>
		struct Point { int x; int y; };
		int main() {
			struct Point p;
			p.x = 3;
			p.y = 4;
			printf("%d %d", p.x, p.y);
			return 0;
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "3 4", out)
}

func TestInterpreter_PrefixVsPostfixIncrement(t *testing.T) {
	out, _, err := runSource(t, `
		#include <stdio.h>
		int main() {
			int x = 5;
			printf("%d ", x++);
			printf("%d ", x);
			printf("%d ", ++x);
			printf("%d", x);
			return 0;
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "5 6 7 7", out)
}

func TestInterpreter_ShortCircuitAnd(t *testing.T) {
	out, _, err := runSource(t, `
		#include <stdio.h>
		int sideEffect(int n) { printf("called"); return n; }
		int main() {
			int x = 0;
			if (x != 0 && sideEffect(1)) { }
			printf("done");
			return 0;
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "done", out, "right operand of && must not be evaluated when left is false")
}

func TestInterpreter_ShortCircuitOr(t *testing.T) {
	out, _, err := runSource(t, `
		#include <stdio.h>
		int sideEffect(int n) { printf("called"); return n; }
		int main() {
			int x = 1;
			if (x != 0 || sideEffect(1)) { }
			printf("done");
			return 0;
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "done", out, "right operand of || must not be evaluated when left is true")
}

func TestInterpreter_DivisionByZeroIsARuntimeError(t *testing.T) {
	_, _, err := runSource(t, `
		int main() { int x = 1 / 0; return 0; }
	`, "")
	require.Error(t, err)
}

func TestInterpreter_ScanfReadsAndBindsByAddress(t *testing.T) {
	out, _, err := runSource(t, `
		#include <stdio.h>
		int main() {
			int x;
			scanf("%d", &x);
			printf("%d", x);
			return 0;
		}
	`, "42\n")
	require.NoError(t, err)
	assert.Equal(t, "42", out)
}

func TestInterpreter_BreakAndContinue(t *testing.T) {
	out, _, err := runSource(t, `
		#include <stdio.h>
		int main() {
			int i = 0;
			int sum = 0;
			while (i < 10) {
				i = i + 1;
				if (i == 5) { break; }
				if (i % 2 == 0) { continue; }
				sum = sum + i;
			}
			printf("%d", sum);
			return 0;
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "4", out)
}

func TestInterpreter_ReturnValuePropagatesAsExitStatus(t *testing.T) {
	_, status, err := runSource(t, `
		int main() { return 7; }
	`, "")
	require.NoError(t, err)
	assert.Equal(t, int32(7), status)
}
