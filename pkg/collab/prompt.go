package collab

import (
	"fmt"
	"strings"
)

// Prompt renders the natural-language instruction sent to model-backed
// collaborators.
func Prompt(req Request) string {
	switch req.Kind {
	case KindServerScan:
		var b strings.Builder
		fmt.Fprintf(&b, "Simulate a comprehensive security and system health scan on host %q", req.HostName)
		if req.Tool != "" {
			fmt.Fprintf(&b, " using the %q profile", req.Tool)
		}
		b.WriteString(".\n")
		if req.Verbose {
			b.WriteString("CRITICAL: This is a VERBOSE scan (--verbose). Include detailed memory address hex dumps, " +
				"specific kernel system call traces (syscall), low-level disk I/O metrics, and granular process tree analysis.\n")
		} else {
			b.WriteString("The script runs remotely via SSH, collects metrics, checks open ports, and then deletes itself.\n")
		}
		b.WriteString("Output should show the script initialization, the scan phases (CPU, Memory, Network, FS), findings, and final cleanup log.\n")
		b.WriteString("Provide the output as raw terminal text.")
		return b.String()

	case KindWebScan:
		return fmt.Sprintf("Simulate a web vulnerability scan report for URL %q using tool %q.\n"+
			"Focus on OWASP Top 10 categories. Be specific with simulated CVE numbers or bug types.\n"+
			"Format it as high-density terminal output.", req.URL, req.Tool)

	default:
		return fmt.Sprintf("Simulate a terminal output for a system administrator running %q on host %q.\n"+
			"Make it look highly technical and realistic. Include shell prompts like [%s@%s ~]$.\n"+
			"Keep the output under 20 lines. Do not use markdown blocks, just raw text.",
			req.Action, req.HostName, promptUser(req), req.HostName)
	}
}

func promptUser(req Request) string {
	if req.Operator != "" {
		return req.Operator
	}
	return "admin"
}

// stripFences removes a surrounding markdown code fence, which models tend to
// add despite being asked not to.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	} else {
		t = ""
	}
	t = strings.TrimSuffix(strings.TrimRight(t, "\n"), "```")
	return strings.TrimRight(t, "\n")
}
