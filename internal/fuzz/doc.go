// Package fuzztests houses Go fuzz harnesses for the LaTeX validator and
// formatter. Its goal is to smoke test robustness on arbitrary input: no
// panics, no hangs, diagnostics that point inside the document and a
// formatter that is idempotent.
//
// Назначение: прогонять произвольные байты через latex.Validate, Format и
// вспомогательные преобразования, проверяя инварианты из internal/testkit.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/latex, internal/diag, internal/testkit.
package fuzztests
