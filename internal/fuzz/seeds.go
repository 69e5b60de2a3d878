package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"texlint/internal/config"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

var inlineSeeds = []string{
	"",
	`\begin{itemize}`,
	"\\begin{itemize}\n\\end{enumerate}",
	`\end{document}`,
	"\\begin{tabular}{ll}\na & b \\\\\n\\end{tabular}\nR&D",
	`\\% \% % \\\& $a$ $b`,
	"{[(])}\n)]}",
	"\\section{A}\ntext\n\\subsection{B}\n\n\n\nmore   \t",
	"\\begin{align}x &= 1\\end{align} & after",
	"\r\n\\begin{x}\r\n\\end{x}\r\n",
	"\\begin{}\\end{}\\begin{a}}\\end{a",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	f.Add([]byte(config.StarterDocument))
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.tex файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".tex" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) string {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return string(input)
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input string, maxLen int) string {
	if len(input) <= maxLen {
		return input
	}
	return input[:maxLen] + "..."
}
