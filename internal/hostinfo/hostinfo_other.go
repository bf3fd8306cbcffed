//go:build !linux

package hostinfo

func fillUname(*Info) {}
