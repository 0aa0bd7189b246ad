package engine

import "strings"

// Version is shown in the boot banner.
const Version = "2.5.0"

// Operators is the closed set of identities the console can run as. The
// identity only annotates prompts and synthetic commands.
var Operators = []string{"admin", "gustavw", "stephenc"}

// DefaultOperator is used when no identity has been persisted yet.
const DefaultOperator = "admin"

// ServerTools are the scan profiles offered for hosts in the SERVER_SCAN view.
var ServerTools = []string{
	"Full Health Audit",
	"Log Analysis (AI)",
	"Rootkit Hunter",
	"Net Topology Mapper",
	"Compliance Check (PCI)",
	"Patch Availability Audit",
	"Process Integrity Scan",
	"User Permission Audit",
	"Kernel Module Check",
}

// WebTools are the scanners offered in the WEB_SCAN view.
var WebTools = []string{
	"ZAP Aggressive Scanner",
	"Nikto Recon",
	"Sqlmap (Automated)",
	"Burp Suite (Passive)",
	"XSS Striker",
	"WPSec Scanner",
	"CMS Recon",
	"SSL/TLS Suite",
	"API Endpoint Discovery",
	"Header Security Check",
}

// Regions offered by the CONFIG view when cycling a host's region. Regions
// stay free text; this list only drives the editor.
var Regions = []string{"us-east-1", "us-west-2", "eu-west-1", "af-south-1"}

// Troubleshooting commands issued by ping/disk/logs.
const (
	PingCommand = "ping -c 4 8.8.8.8"
	DiskCommand = "df -h"
	LogsCommand = "tail -n 20 /var/log/syslog"
)

// ParseOperator matches name case-insensitively against Operators.
func ParseOperator(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, op := range Operators {
		if op == name {
			return op, true
		}
	}
	return "", false
}

// ResolveTool returns the first tool containing sub (case-insensitive).
// An empty or unmatched sub falls back to the first tool.
func ResolveTool(tools []string, sub string) string {
	if len(tools) == 0 {
		return ""
	}
	sub = strings.ToLower(strings.TrimSpace(sub))
	if sub != "" {
		for _, t := range tools {
			if strings.Contains(strings.ToLower(t), sub) {
				return t
			}
		}
	}
	return tools[0]
}

// DefaultHosts returns a fresh copy of the seed inventory used when nothing
// has been persisted yet.
func DefaultHosts() []Host {
	out := make([]Host, len(seedHosts))
	copy(out, seedHosts)
	return out
}

var seedHosts = []Host{
	{ID: "za-11", Name: "ose-com", IP: "192.168.255.11", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-14", Name: "probe01-conco", IP: "192.168.255.14", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-15", Name: "probe01-vodacom-lesotho", IP: "192.168.255.15", Status: StatusOffline, Region: "af-south-1"},
	{ID: "za-17", Name: "ose-echo-jhb-tacacs", IP: "192.168.255.17", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-18", Name: "ose-01-afrihost", IP: "192.168.255.18", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-19", Name: "ose-01-datora", IP: "192.168.255.19", Status: StatusOffline, Region: "af-south-1"},
	{ID: "za-20", Name: "ose-02-econet-lesotho", IP: "192.168.255.20", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-21", Name: "ose-echo-cpt-tacacs", IP: "192.168.255.21", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-22", Name: "gpg-radius", IP: "192.168.255.22", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-23", Name: "ose-echo-jhb-needlecast", IP: "192.168.255.23", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-24", Name: "belvedere", IP: "192.168.255.24", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-25", Name: "svs-za-jhb-se-radiusapn-01", IP: "192.168.255.25", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-26", Name: "probe02-econet", IP: "192.168.255.26", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-27", Name: "Vouchas-CPT-1", IP: "192.168.255.27", Status: StatusOffline, Region: "af-south-1"},
	{ID: "za-28", Name: "vast-vouchas-jhb-ose-1", IP: "192.168.255.28", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-29", Name: "vast-vouchas-jhb-ose-2", IP: "192.168.255.29", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-33", Name: "ose-cmc-auth01-ter", IP: "192.168.255.33", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-34", Name: "ose-cmc-auth02-ter", IP: "192.168.255.34", Status: StatusOnline, Region: "af-south-1"},
	{ID: "za-35", Name: "ose-cmc-auth03-cmcho", IP: "192.168.255.35", Status: StatusOnline, Region: "af-south-1"},
	{ID: "lan-01", Name: "ose-lancet-ghana-01", IP: "192.168.255.108", Status: StatusOnline, Region: "af-south-1"},
	{ID: "lan-02", Name: "ose-lancet-nigeria-01", IP: "192.168.255.110", Status: StatusOnline, Region: "af-south-1"},
	{ID: "lan-03", Name: "ose-lancet-zambia-01", IP: "192.168.255.111", Status: StatusOnline, Region: "af-south-1"},
	{ID: "lan-04", Name: "ose-lancet-uganda-01", IP: "192.168.255.112", Status: StatusOnline, Region: "af-south-1"},
	{ID: "lan-05", Name: "ose-lancet-kenya-01", IP: "192.168.255.116", Status: StatusOnline, Region: "af-south-1"},
	{ID: "ssa-01", Name: "ose-safetysa-boksburg", IP: "192.168.255.124", Status: StatusOnline, Region: "af-south-1"},
	{ID: "ssa-02", Name: "ose-safetysa-centurion", IP: "192.168.255.126", Status: StatusOnline, Region: "af-south-1"},
	{ID: "ssa-03", Name: "ose-safetysa-ct", IP: "192.168.255.131", Status: StatusOnline, Region: "af-south-1"},
	{ID: "lon-01", Name: "ose-velocity-london-01", IP: "192.168.255.186", Status: StatusOnline, Region: "eu-west-1"},
	{ID: "lon-02", Name: "ose-velocity-london-02", IP: "192.168.255.158", Status: StatusOnline, Region: "eu-west-1"},
	{ID: "lon-03", Name: "ose-velocity-london-ld6", IP: "192.168.255.159", Status: StatusOnline, Region: "eu-west-1"},
	{ID: "cor-01", Name: "t6f-nucleus", IP: "172.255.255.42", Status: StatusOnline, Region: "us-east-1"},
	{ID: "cor-02", Name: "homer.t6f.co.za", IP: "192.168.255.251", Status: StatusOnline, Region: "us-east-1"},
	{ID: "cor-03", Name: "ose-siliconsky-usa-01", IP: "192.168.255.11", Status: StatusOnline, Region: "us-east-1"},
}
