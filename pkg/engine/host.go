package engine

import "strings"

// HostStatus is the reachability flag shown next to each host.
type HostStatus string

const (
	StatusOnline  HostStatus = "online"
	StatusOffline HostStatus = "offline"
)

// ParseHostStatus accepts "online"/"offline" in any case.
func ParseHostStatus(s string) (HostStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(StatusOnline), "up":
		return StatusOnline, true
	case string(StatusOffline), "down":
		return StatusOffline, true
	}
	return "", false
}

// Toggle flips online/offline.
func (s HostStatus) Toggle() HostStatus {
	if s == StatusOnline {
		return StatusOffline
	}
	return StatusOnline
}

// Host is a registered network endpoint. ID is the only identity; Name, IP and
// Region are free text and may repeat across hosts.
type Host struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	IP     string     `json:"ip"`
	Status HostStatus `json:"status"`
	Region string     `json:"region"`
}

// HostPatch is a partial update; nil fields are left untouched.
type HostPatch struct {
	ID     *string
	Name   *string
	IP     *string
	Status *HostStatus
	Region *string
}

func (p HostPatch) apply(h Host) Host {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.IP != nil {
		h.IP = *p.IP
	}
	if p.Status != nil {
		h.Status = *p.Status
	}
	if p.Region != nil {
		h.Region = *p.Region
	}
	return h
}

// Field helpers for building patches inline.
func StringField(s string) *string         { return &s }
func StatusField(s HostStatus) *HostStatus { return &s }

// Host defaults applied by Registry.Add for unset fields.
const (
	DefaultHostName   = "new-host"
	DefaultHostIP     = "0.0.0.0"
	DefaultHostRegion = "us-east-1"
)
