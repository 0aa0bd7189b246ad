// Package collab provides the text-generation collaborators that produce the
// simulated terminal output for troubleshooting commands and scans.
//
// A collaborator is opaque to the console: it receives a Request and returns
// freeform line-delimited text, possibly slowly and possibly failing.
package collab

import (
	"context"
	"errors"
)

// Kind identifies which family of action a request belongs to.
type Kind string

const (
	KindTroubleshoot Kind = "troubleshoot"
	KindServerScan   Kind = "server_scan"
	KindWebScan      Kind = "web_scan"
)

// Request describes what should be simulated. Host fields are set for
// troubleshooting and server scans; URL for web scans.
type Request struct {
	Kind     Kind   `json:"kind"`
	HostName string `json:"host_name,omitempty"`
	HostIP   string `json:"host_ip,omitempty"`
	URL      string `json:"url,omitempty"`
	Action   string `json:"action,omitempty"`
	Tool     string `json:"tool,omitempty"`
	Verbose  bool   `json:"verbose,omitempty"`
	Operator string `json:"operator,omitempty"`
}

// Collaborator turns a Request into terminal-looking text.
type Collaborator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to Collaborator.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ErrEmptyResponse is returned by backends that received no text.
var ErrEmptyResponse = errors.New("collaborator returned empty response")
