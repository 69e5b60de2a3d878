package config

// Template is the file written by `texlint init`.
const Template = `# texlint configuration

[validate]
# also report brackets that are still open at the end of a document
report_unclosed_brackets = false
# codes to drop, e.g. ["TEX2001"]
disable = []
warnings_as_errors = false

[format]
indent = 4
# transforms applied by "texlint fmt", in order: format, clean, align
pipeline = ["format"]
# compose Unicode text to NFC before formatting
nfc = false

[files]
extensions = [".tex"]
`

// StarterDocument is the resume written by `texlint init` next to the config.
const StarterDocument = `\documentclass[11pt]{article}
\usepackage[margin=1in]{geometry}

\begin{document}

    \begin{center}
        {\Large Your Name} \\
        you@example.com
    \end{center}

    \section{Experience}

    \begin{itemize}
        \item Role, Company \hfill 2020--2024
    \end{itemize}

    \section{Skills}

    \begin{tabular}{ll}
        Languages & Go, SQL \\
        Tools & Git, Docker \\
    \end{tabular}

\end{document}
`
