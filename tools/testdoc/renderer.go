package main

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"
)

// RenderMarkdown writes the test documentation as markdown, grouped by
// the viewyard command each test exercises.
func RenderMarkdown(w io.Writer, packages []TestPackage) error {
	fmt.Fprintf(w, "# Test Documentation\n\n")
	fmt.Fprintf(w, "Generated: %s\n\n", time.Now().Format("2006-01-02"))

	commandMap := make(map[string][]TestFunc)
	for _, pkg := range packages {
		for _, file := range pkg.Files {
			for _, test := range file.Tests {
				cmd := extractCommand(test.Name)
				commandMap[cmd] = append(commandMap[cmd], test)
			}
		}
	}

	var commands []string
	for cmd := range commandMap {
		commands = append(commands, cmd)
	}
	sort.Strings(commands)

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Command | Tests |\n")
	fmt.Fprintf(w, "|---------|-------|\n")

	totalTests := 0
	for _, cmd := range commands {
		tests := commandMap[cmd]
		fmt.Fprintf(w, "| [%s](#%s) | %d |\n", cmd, toAnchor(cmd), len(tests))
		totalTests += len(tests)
	}
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", totalTests)

	for _, cmd := range commands {
		renderCommandSection(w, cmd, commandMap[cmd])
	}

	return nil
}

func renderCommandSection(w io.Writer, cmd string, tests []TestFunc) {
	fmt.Fprintf(w, "## %s\n\n", cmd)
	fmt.Fprintf(w, "| Test | Description |\n")
	fmt.Fprintf(w, "|------|-------------|\n")

	for _, test := range tests {
		desc := extractDescription(test.Doc, test.Name)
		desc = strings.ReplaceAll(desc, "|", "\\|")
		fmt.Fprintf(w, "| `%s` | %s |\n", test.Name, desc)
	}
	fmt.Fprintf(w, "\n")
}

// extractCommand maps a test function name to the command it exercises.
// Examples:
//   - TestViewCreate_EndToEnd -> viewyard view create
//   - TestStatus_CleanAndDirty -> viewyard status
//   - TestCommitAll_SkipsClean -> viewyard commit-all
func extractCommand(testName string) string {
	name := strings.TrimPrefix(testName, "Test")

	parts := strings.SplitN(name, "_", 2)
	if len(parts) == 0 {
		return "other"
	}
	cmd := parts[0]

	cmdMap := map[string]string{
		"ViewCreate":   "viewyard view create",
		"Create":       "viewyard view create",
		"ViewList":     "viewyard view list",
		"List":         "viewyard view list",
		"ViewDelete":   "viewyard view delete",
		"Delete":       "viewyard view delete",
		"ViewValidate": "viewyard view validate",
		"Validate":     "viewyard view validate",
		"Status":       "viewyard status",
		"StatusAll":    "viewyard status",
		"RepoStatus":   "viewyard status",
		"CommitAll":    "viewyard commit-all",
		"CommitPush":   "viewyard commit-all",
		"PushAll":      "viewyard push-all",
		"Rebase":       "viewyard rebase",
		"Diff":         "viewyard diff",
		"Diffs":        "viewyard diff",
		"ConfigInit":   "viewyard config",
		"Config":       "viewyard config",
		"Resolve":      "identity",
		"Apply":        "identity",
	}

	if mapped, ok := cmdMap[cmd]; ok {
		return mapped
	}
	return strings.ToLower(cmd)
}

// extractDescription takes the first line of the doc comment, stripping
// the conventional leading function name.
func extractDescription(doc string, testName string) string {
	if doc == "" {
		return "_No documentation_"
	}

	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			line = strings.TrimPrefix(line, testName+" ")
			if len(line) > 0 {
				line = strings.ToUpper(line[:1]) + line[1:]
			}
			return line
		}
	}

	return "_No documentation_"
}

func toAnchor(cmd string) string {
	anchor := strings.ReplaceAll(cmd, " ", "-")
	re := regexp.MustCompile(`[^a-zA-Z0-9-]`)
	anchor = re.ReplaceAllString(anchor, "")
	return strings.ToLower(anchor)
}
