package output

import (
	"strings"
)

// Diff renders a unified-style line diff between two document texts,
// sufficient for the confirmation preview. Unchanged runs longer than a few
// lines are elided.
func Diff(before, after string) string {
	a := splitLines(before)
	b := splitLines(after)

	ops := diffOps(a, b)
	if len(ops) == 0 {
		return ""
	}

	const keep = 2
	var sb strings.Builder
	pending := []string{}

	flushContext := func(tail bool) {
		n := len(pending)
		if n > keep*2 {
			head := pending[:keep]
			var tailLines []string
			if !tail {
				tailLines = pending[n-keep:]
			}
			for _, line := range head {
				sb.WriteString("  " + line + "\n")
			}
			sb.WriteString("  ...\n")
			for _, line := range tailLines {
				sb.WriteString("  " + line + "\n")
			}
		} else {
			for _, line := range pending {
				sb.WriteString("  " + line + "\n")
			}
		}
		pending = pending[:0]
	}

	for _, op := range ops {
		switch op.kind {
		case diffSame:
			pending = append(pending, op.line)
		case diffDel:
			flushContext(false)
			sb.WriteString("- " + op.line + "\n")
		case diffAdd:
			flushContext(false)
			sb.WriteString("+ " + op.line + "\n")
		}
	}
	flushContext(true)
	return sb.String()
}

type diffKind int

const (
	diffSame diffKind = iota
	diffDel
	diffAdd
)

type diffOp struct {
	kind diffKind
	line string
}

// diffOps computes a line-level LCS diff. Catalog documents are small
// enough that the quadratic table is not a concern.
func diffOps(a, b []string) []diffOp {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []diffOp
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, diffOp{diffSame, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, diffOp{diffDel, a[i]})
			i++
		default:
			ops = append(ops, diffOp{diffAdd, b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, diffOp{diffDel, a[i]})
	}
	for ; j < m; j++ {
		ops = append(ops, diffOp{diffAdd, b[j]})
	}
	return ops
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
