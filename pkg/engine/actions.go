package engine

import (
	"context"
	"fmt"
	"strings"
)

// NoURLText is logged when a web scan is requested without a target.
const NoURLText = "ERROR: TARGET URL NOT SPECIFIED"

// Direct actions used by menu panels. They share the pipeline and its busy
// guard with typed commands but do not echo a prompt line.

// Troubleshoot runs command against h.
func (in *Interpreter) Troubleshoot(ctx context.Context, h Host, command string) (*Run, error) {
	return in.pipeline.Start(ctx, Troubleshoot(h, command))
}

// Scan runs a full server scan against h with the tool matching tool.
func (in *Interpreter) Scan(ctx context.Context, h Host, tool string, verbose bool) (*Run, error) {
	return in.pipeline.Start(ctx, ServerScan(h, ResolveTool(ServerTools, tool), verbose))
}

// WebScan runs a web scan. An empty url is reported as one error line.
func (in *Interpreter) WebScan(ctx context.Context, url, tool string) (*Run, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		in.session.Log.Error(NoURLText)
		return nil, fmt.Errorf("%w: url", ErrMissingArgument)
	}
	return in.pipeline.Start(ctx, WebScan(url, ResolveTool(WebTools, tool)))
}

// Abort cancels the running action, if any.
func (in *Interpreter) Abort() bool { return in.pipeline.Abort() }

// Session returns the session the interpreter operates on.
func (in *Interpreter) Session() *Session { return in.session }

// AddHost registers a host built from p and reports it.
func (in *Interpreter) AddHost(p HostPatch) Host {
	h := in.session.Hosts.Add(p)
	in.session.Log.Success(fmt.Sprintf("SYSTEM: New node %s added to registry.", h.ID))
	return h
}

// RemoveHost decommissions the host with id. Unknown ids are reported as one
// error line.
func (in *Interpreter) RemoveHost(id string) error {
	if !in.session.Hosts.Remove(id) {
		return in.unknownHostID(id)
	}
	in.session.Log.Error(fmt.Sprintf("SYSTEM: Node %s decommissioned from registry.", id))
	return nil
}
