package collab

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// Static produces canned but plausible terminal output without any network
// access. It is deterministic for a given request.
type Static struct{}

func (Static) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	seed := fingerprint(req.HostName + req.URL + req.Action + req.Tool)
	switch req.Kind {
	case KindServerScan:
		return staticServerScan(req, seed), nil
	case KindWebScan:
		return staticWebScan(req, seed), nil
	default:
		return staticTroubleshoot(req, seed), nil
	}
}

func fingerprint(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func staticTroubleshoot(req Request, seed uint32) string {
	prompt := fmt.Sprintf("[%s@%s ~]$ %s", promptUser(req), req.HostName, req.Action)
	var b strings.Builder
	b.WriteString(prompt + "\n")
	switch {
	case strings.HasPrefix(req.Action, "ping"):
		b.WriteString("PING 8.8.8.8 (8.8.8.8) 56(84) bytes of data.\n")
		for i := 1; i <= 4; i++ {
			ms := 10 + float64((seed>>uint(i))%400)/10
			fmt.Fprintf(&b, "64 bytes from 8.8.8.8: icmp_seq=%d ttl=117 time=%.1f ms\n", i, ms)
		}
		b.WriteString("\n--- 8.8.8.8 ping statistics ---\n")
		b.WriteString("4 packets transmitted, 4 received, 0% packet loss, time 3004ms")
	case strings.HasPrefix(req.Action, "df"):
		used := 20 + seed%70
		b.WriteString("Filesystem      Size  Used Avail Use% Mounted on\n")
		fmt.Fprintf(&b, "/dev/sda1        50G  %2dG  %2dG  %2d%% /\n", used*50/100, 50-used*50/100, used)
		b.WriteString("tmpfs           3.9G     0  3.9G   0% /dev/shm\n")
		fmt.Fprintf(&b, "/dev/sdb1       200G  %2dG  %3dG  %2d%% /var/log", seed%90, 200-seed%90, (seed%90)*100/200)
	case strings.HasPrefix(req.Action, "tail"):
		for i := 0; i < 6; i++ {
			fmt.Fprintf(&b, "Oct 15 08:%02d:%02d %s systemd[1]: Started Session %d of user %s.\n",
				(seed+uint32(i))%60, (seed>>3+uint32(i)*7)%60, req.HostName, 1000+i, promptUser(req))
		}
		fmt.Fprintf(&b, "Oct 15 08:59:59 %s sshd[%d]: Accepted publickey for %s", req.HostName, 2000+seed%5000, promptUser(req))
	default:
		fmt.Fprintf(&b, "%s: command completed with exit status 0", req.Action)
	}
	return b.String()
}

func staticServerScan(req Request, seed uint32) string {
	tool := req.Tool
	if tool == "" {
		tool = "Full Health Audit"
	}
	lines := []string{
		fmt.Sprintf("[*] nucleus_scan.sh v3.1 initialising on %s (%s)", req.HostName, tool),
		"[*] Phase 1/4: CPU",
		fmt.Sprintf("    load average: 0.%02d, 0.%02d, 0.%02d", seed%100, (seed>>4)%100, (seed>>8)%100),
		"[*] Phase 2/4: Memory",
		fmt.Sprintf("    MemTotal: 16384000 kB  MemAvailable: %d kB", 4000000+seed%8000000),
		"[*] Phase 3/4: Network",
		"    22/tcp   open  ssh",
		fmt.Sprintf("    %d/tcp open  unknown", 1024+seed%50000),
		"[*] Phase 4/4: Filesystem",
		"    world-writable files outside /tmp: 0",
	}
	if req.Verbose {
		lines = append(lines,
			fmt.Sprintf("    0x%08x: 7f45 4c46 0201 0100 0000 0000 0000 0000", seed),
			"    syscall trace: openat(AT_FDCWD, \"/etc/shadow\", O_RDONLY) = -1 EACCES",
			fmt.Sprintf("    sda: r/s=%d w/s=%d await=%dms", seed%300, (seed>>5)%200, seed%12),
		)
	}
	lines = append(lines,
		fmt.Sprintf("[+] Findings: %d warning(s), 0 critical", seed%4),
		"[*] Cleanup: removing temporary artifacts",
	)
	return strings.Join(lines, "\n")
}

func staticWebScan(req Request, seed uint32) string {
	cats := []string{
		"A01:2021 Broken Access Control",
		"A02:2021 Cryptographic Failures",
		"A03:2021 Injection",
		"A05:2021 Security Misconfiguration",
		"A07:2021 Identification and Authentication Failures",
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] target=%s\n", req.Tool, req.URL)
	for i, c := range cats {
		sev := []string{"INFO", "LOW", "MEDIUM", "HIGH"}[(seed>>uint(i*2))%4]
		fmt.Fprintf(&b, "  %-52s %s\n", c, sev)
	}
	fmt.Fprintf(&b, "  CVE-2024-%04d matched in response headers\n", 1000+seed%9000)
	b.WriteString("Scan complete.")
	return b.String()
}
